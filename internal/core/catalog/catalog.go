// Package catalog exposes the static lists of project categories and
// engineer specialties shown in forms and filters.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog holds the advisory vocabularies. Values outside them are accepted
// by the workflow; the lists only drive pickers.
type Catalog struct {
	Categories  []string `yaml:"categories" json:"categories"`
	Specialties []string `yaml:"specialties" json:"specialties"`
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Categories) == 0 || len(c.Specialties) == 0 {
		return nil, fmt.Errorf("parse catalog: categories and specialties are required")
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// HasCategory reports whether name is a known project category.
func (c *Catalog) HasCategory(name string) bool {
	return slices.Contains(c.Categories, name)
}

// HasSpecialty reports whether name is a known engineer specialty.
func (c *Catalog) HasSpecialty(name string) bool {
	return slices.Contains(c.Specialties, name)
}
