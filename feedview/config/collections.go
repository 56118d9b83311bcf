package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"quadrangle.org/core/feed"
	"quadrangle.org/core/models"
)

// Collections describes which backend collections to subscribe and
// the category taxonomy filter input is validated against.
type Collections struct {
	Collections []string `yaml:"collections"`
	Categories  []string `yaml:"categories"`
}

func DefaultCollections() *Collections {
	return &Collections{
		Collections: []string{
			string(models.KindEvent),
			string(models.KindGroup),
			string(models.KindResource),
		},
		Categories: []string{},
	}
}

// LoadCollections reads the yaml collections file; an empty path
// yields the defaults (all collections, open category taxonomy).
func LoadCollections(path string) (*Collections, error) {
	if path == "" {
		return DefaultCollections(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collections file: %w", err)
	}

	var c Collections
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse collections file: %w", err)
	}
	if len(c.Collections) == 0 {
		c.Collections = DefaultCollections().Collections
	}

	for _, name := range c.Collections {
		if _, err := models.ParseEntityKind(name); err != nil {
			return nil, fmt.Errorf("collections file: %w", err)
		}
	}

	return &c, nil
}

// Kinds returns the subscribed collections as entity kinds.
func (c *Collections) Kinds() []models.EntityKind {
	kinds := make([]models.EntityKind, len(c.Collections))
	for i, name := range c.Collections {
		kinds[i] = models.EntityKind(name)
	}
	return kinds
}

// ValidCategory reports whether a filter category is usable: the All
// sentinel always is, and anything goes when no taxonomy is
// configured.
func (c *Collections) ValidCategory(category string) bool {
	if category == "" || category == feed.CategoryAll {
		return true
	}
	if len(c.Categories) == 0 {
		return true
	}
	return slices.Contains(c.Categories, category)
}
