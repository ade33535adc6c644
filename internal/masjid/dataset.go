package masjid

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/masjids.yaml
var bundled []byte

var ErrInvalidDataset = errors.New("invalid masjid dataset")

// Bundled returns the dataset compiled into the binary.
func Bundled() ([]Masjid, error) {
	return Parse(bundled)
}

// Load reads a YAML dataset from path. An empty path returns the bundled dataset.
func Load(path string) ([]Masjid, error) {
	if strings.TrimSpace(path) == "" {
		return Bundled()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	list, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return list, nil
}

func Parse(raw []byte) ([]Masjid, error) {
	var list []Masjid
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Validate checks identifier uniqueness, names and coordinate ranges.
func Validate(list []Masjid) error {
	seen := make(map[int]struct{}, len(list))
	for i, m := range list {
		if m.ID <= 0 {
			return fmt.Errorf("%w: entry %d has non-positive id %d", ErrInvalidDataset, i, m.ID)
		}
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidDataset, m.ID)
		}
		seen[m.ID] = struct{}{}
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: id %d has empty name", ErrInvalidDataset, m.ID)
		}
		if !m.Location.Valid() {
			return fmt.Errorf("%w: id %d has out of range location %v,%v", ErrInvalidDataset, m.ID, m.Location.Lat, m.Location.Lon)
		}
	}
	return nil
}
