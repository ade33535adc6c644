package geo

import "math"

// Point is an immutable geographic position in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Bounds is an axis-aligned lat/lon box. The zero value is empty.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
	set    bool
}

// NewBounds returns the minimal box covering every point. ok is false for an empty input.
func NewBounds(points ...Point) (Bounds, bool) {
	var b Bounds
	for _, p := range points {
		b = b.Extend(p)
	}
	return b, b.set
}

func (b Bounds) Extend(p Point) Bounds {
	if !b.set {
		return Bounds{MinLat: p.Lat, MinLon: p.Lon, MaxLat: p.Lat, MaxLon: p.Lon, set: true}
	}
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MinLon = math.Min(b.MinLon, p.Lon)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	b.MaxLon = math.Max(b.MaxLon, p.Lon)
	return b
}

func (b Bounds) IsEmpty() bool { return !b.set }

func (b Bounds) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

func (b Bounds) SouthWest() Point { return Point{Lat: b.MinLat, Lon: b.MinLon} }
func (b Bounds) NorthEast() Point { return Point{Lat: b.MaxLat, Lon: b.MaxLon} }

func (b Bounds) Contains(p Point) bool {
	if !b.set {
		return false
	}
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
