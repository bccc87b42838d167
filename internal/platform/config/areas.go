package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Area is reference data upserted into the store at startup.
type Area struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type areasFile struct {
	Areas []Area `yaml:"areas"`
}

func DefaultAreas() []Area {
	return []Area{
		{ID: "checkout", Name: "Kasse", Color: "#8cbf3f"},
		{ID: "bakery", Name: "Backshop", Color: "#f2a93b"},
		{ID: "sales-floor", Name: "Verkaufsfläche", Color: "#4a90d9"},
		{ID: "warehouse", Name: "Lager", Color: "#9b59b6"},
	}
}

// LoadAreas reads the YAML area list. An empty path keeps the defaults.
func LoadAreas(path string) ([]Area, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAreas(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read areas file: %w", err)
	}
	return ParseAreas(raw)
}

func ParseAreas(raw []byte) ([]Area, error) {
	var file areasFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse areas file: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Areas))
	for i, area := range file.Areas {
		area.ID = strings.TrimSpace(area.ID)
		area.Name = strings.TrimSpace(area.Name)
		if area.ID == "" || area.Name == "" {
			return nil, fmt.Errorf("area %d: id and name are required", i)
		}
		if _, ok := seen[area.ID]; ok {
			return nil, fmt.Errorf("area %q declared twice", area.ID)
		}
		seen[area.ID] = struct{}{}
		if area.Color == "" {
			area.Color = "#cccccc"
		}
		file.Areas[i] = area
	}
	return file.Areas, nil
}
