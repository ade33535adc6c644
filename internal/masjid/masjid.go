package masjid

import "iqamahs/core-go/internal/geo"

const (
	PrayerFajr    = "Fajr"
	PrayerDuhr    = "Duhr"
	PrayerAsr     = "Asr"
	PrayerMaghrib = "Maghrib"
	PrayerIsha    = "Isha"
)

// Masjid is one directory entry. Values are never mutated after load.
type Masjid struct {
	ID          int         `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Address     string      `json:"address" yaml:"address"`
	Location    geo.Point   `json:"location" yaml:"location"`
	PrayerTimes PrayerTimes `json:"prayer_times" yaml:"prayerTimes"`
	JumuahTimes []string    `json:"jumuah_times" yaml:"jumuahTimes"`
}

// PrayerTimes holds the daily iqamah times.
type PrayerTimes struct {
	Fajr    string `json:"fajr" yaml:"Fajr"`
	Duhr    string `json:"duhr" yaml:"Duhr"`
	Asr     string `json:"asr" yaml:"Asr"`
	Maghrib string `json:"maghrib" yaml:"Maghrib"`
	Isha    string `json:"isha" yaml:"Isha"`
}

type Prayer struct {
	Name string
	Time string
}

// Entries returns the five daily prayers in order.
func (p PrayerTimes) Entries() []Prayer {
	return []Prayer{
		{Name: PrayerFajr, Time: p.Fajr},
		{Name: PrayerDuhr, Time: p.Duhr},
		{Name: PrayerAsr, Time: p.Asr},
		{Name: PrayerMaghrib, Time: p.Maghrib},
		{Name: PrayerIsha, Time: p.Isha},
	}
}

// HoustonBounds frames the greater Houston area covered by the bundled dataset.
var HoustonBounds = houstonBounds()

func houstonBounds() geo.Bounds {
	b, _ := geo.NewBounds(geo.Point{Lat: 29.5, Lon: -95.9}, geo.Point{Lat: 30.1, Lon: -95.0})
	return b
}

// IDs returns the identifiers of list in order.
func IDs(list []Masjid) []int {
	out := make([]int, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

// Positions returns the locations of list in order.
func Positions(list []Masjid) []geo.Point {
	out := make([]geo.Point, 0, len(list))
	for _, m := range list {
		out = append(out, m.Location)
	}
	return out
}

// Find returns the entry with id, if present.
func Find(list []Masjid, id int) (Masjid, bool) {
	for _, m := range list {
		if m.ID == id {
			return m, true
		}
	}
	return Masjid{}, false
}
