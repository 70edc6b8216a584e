package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"serialx/internal/serial"
	"serialx/internal/spec"
)

const SupportedSchema = "v1"

// LoadCatalog parses a catalog YAML, validates schema_version and the
// product rules, and returns the catalog ready for lookups. An empty
// path yields the built-in catalog.
func LoadCatalog(path string) (*serial.Catalog, error) {
	if path == "" {
		return serial.DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc spec.Catalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if doc.SchemaVersion == "" {
		doc.SchemaVersion = SupportedSchema
	}
	if doc.SchemaVersion != SupportedSchema {
		return nil, fmt.Errorf("catalog schema_version %q not supported (want %q)", doc.SchemaVersion, SupportedSchema)
	}

	products := make([]serial.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		models := make([]serial.Model, 0, len(p.Models))
		for _, m := range p.Models {
			models = append(models, serial.Model{Code: m.Code, Name: m.Name})
		}
		products = append(products, serial.Product{Type: p.Type, Name: p.Name, Models: models})
	}
	cat, err := serial.NewCatalog(products)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}
