package config

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog lists the genres and aspect ratios a project may carry.
type Catalog struct {
	Genres             []string `yaml:"genres"`
	AspectRatios       []string `yaml:"aspect_ratios"`
	DefaultAspectRatio string   `yaml:"default_aspect_ratio"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Genres) == 0 {
		return nil, fmt.Errorf("catalog has no genres")
	}
	if len(c.AspectRatios) == 0 {
		return nil, fmt.Errorf("catalog has no aspect ratios")
	}
	if c.DefaultAspectRatio == "" {
		c.DefaultAspectRatio = c.AspectRatios[len(c.AspectRatios)-1]
	}
	if !slices.Contains(c.AspectRatios, c.DefaultAspectRatio) {
		return nil, fmt.Errorf("default aspect ratio %q not in catalog", c.DefaultAspectRatio)
	}
	return &c, nil
}

func (c *Catalog) HasGenre(g string) bool {
	return slices.Contains(c.Genres, g)
}

func (c *Catalog) HasAspectRatio(r string) bool {
	return slices.Contains(c.AspectRatios, r)
}
