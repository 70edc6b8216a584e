package spec

type ModelSpec struct {
	Code string `yaml:"code"` // three digits
	Name string `yaml:"name"`
}

type ProductSpec struct {
	Type   int         `yaml:"type"` // single digit
	Name   string      `yaml:"name"`
	Models []ModelSpec `yaml:"models"`
}

// Catalog is the on-disk product catalog.
type Catalog struct {
	SchemaVersion string `yaml:"schema_version"`

	// Ordered; menus and help list products in this order.
	Products []ProductSpec `yaml:"products"`
}
