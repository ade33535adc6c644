package geo

import "math"

// TileSize is the pixel edge of one zoom-0 world tile.
const TileSize = 256

// maxMercatorLat keeps the projection finite near the poles.
const maxMercatorLat = 85.0511287798

// WorldSize is the edge of the projected world in pixels at zoom.
func WorldSize(zoom float64) float64 {
	return TileSize * math.Pow(2, zoom)
}

// Project maps p to spherical Web-Mercator pixel coordinates at zoom.
func Project(p Point, zoom float64) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Lat))
	scale := WorldSize(zoom)
	x = (p.Lon + 180) / 360 * scale
	sin := math.Sin(lat * math.Pi / 180)
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale
	return x, y
}

// Unproject is the inverse of Project.
func Unproject(x, y, zoom float64) Point {
	scale := WorldSize(zoom)
	lon := x/scale*360 - 180
	n := math.Pi - 2*math.Pi*y/scale
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))
	return Point{Lat: lat, Lon: lon}
}
