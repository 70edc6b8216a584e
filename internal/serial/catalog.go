package serial

import (
	"fmt"
	"strconv"
	"strings"
)

type Model struct {
	Code string // three digits, the MMM group
	Name string
}

type Product struct {
	Type   int // the P digit
	Name   string
	Models []Model
}

// Model looks up a model by its three-digit code.
func (p Product) Model(code string) (Model, bool) {
	for _, m := range p.Models {
		if m.Code == code {
			return m, true
		}
	}
	return Model{}, false
}

// Catalog is the ordered set of products a serial may reference.
type Catalog struct {
	products []Product
}

// NewCatalog validates products and keeps them in the given order.
func NewCatalog(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products", ErrInvalidCatalog)
	}
	seen := make(map[int]bool, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Type < 0 || p.Type > 9 {
			return nil, fmt.Errorf("%w: product type %d must be a single digit", ErrInvalidCatalog, p.Type)
		}
		if seen[p.Type] {
			return nil, fmt.Errorf("%w: duplicate product type %d", ErrInvalidCatalog, p.Type)
		}
		seen[p.Type] = true
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: product type %d has no name", ErrInvalidCatalog, p.Type)
		}
		if len(p.Models) == 0 {
			return nil, fmt.Errorf("%w: product %s has no models", ErrInvalidCatalog, p.Name)
		}
		codes := make(map[string]bool, len(p.Models))
		for _, m := range p.Models {
			if len(m.Code) != 3 || !allDigits(m.Code) {
				return nil, fmt.Errorf("%w: model code %q of %s must be three digits", ErrInvalidCatalog, m.Code, p.Name)
			}
			if codes[m.Code] {
				return nil, fmt.Errorf("%w: duplicate model %s for %s", ErrInvalidCatalog, m.Code, p.Name)
			}
			codes[m.Code] = true
			if strings.TrimSpace(m.Name) == "" {
				return nil, fmt.Errorf("%w: model %s of %s has no name", ErrInvalidCatalog, m.Code, p.Name)
			}
		}
		p.Models = append([]Model(nil), p.Models...)
		out = append(out, p)
	}
	return &Catalog{products: out}, nil
}

// DefaultCatalog is the built-in product line.
func DefaultCatalog() *Catalog {
	return &Catalog{products: []Product{
		{Type: 1, Name: "GrainMate", Models: []Model{
			{Code: "101", Name: "GM-101"},
			{Code: "102", Name: "GM-102"},
			{Code: "103", Name: "GM-103"},
		}},
		{Type: 2, Name: "FarmSense", Models: []Model{
			{Code: "100", Name: "FS-100"},
		}},
	}}
}

func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

func (c *Catalog) Product(typ int) (Product, bool) {
	for _, p := range c.products {
		if p.Type == typ {
			return p, true
		}
	}
	return Product{}, false
}

// Details is a parsed, catalog-checked serial.
type Details struct {
	Original    string
	Year        string
	Batch       int
	ProductType int
	ProductName string
	ModelCode   string
	ModelName   string
	Sequence    int
	Unit        string
}

// Validate checks YYBB-PMMM-6NNN shape and that product and model exist.
func (c *Catalog) Validate(serial string) error {
	_, err := c.Parse(serial)
	return err
}

func (c *Catalog) Parse(serial string) (Details, error) {
	parts := strings.Split(serial, "-")
	if len(parts) != 3 ||
		len(parts[0]) != 4 || !allDigits(parts[0]) ||
		len(parts[1]) != 4 || !allDigits(parts[1]) ||
		len(parts[2]) != 4 || parts[2][0] != '6' || !allDigits(parts[2][1:]) {
		return Details{}, fmt.Errorf("%w %q: must be YYBB-PMMM-6NNN", ErrInvalidSerial, serial)
	}
	yybb, pmmm, snnn := parts[0], parts[1], parts[2]

	typ := int(pmmm[0] - '0')
	product, ok := c.Product(typ)
	if !ok {
		return Details{}, fmt.Errorf("%w %d in %s", ErrUnknownProduct, typ, serial)
	}
	model, ok := product.Model(pmmm[1:])
	if !ok {
		return Details{}, fmt.Errorf("%w %s for %s in %s", ErrUnknownModel, pmmm[1:], product.Name, serial)
	}

	batch, _ := strconv.Atoi(yybb[2:])
	seq, _ := strconv.Atoi(snnn[1:])
	return Details{
		Original:    serial,
		Year:        "20" + yybb[:2],
		Batch:       batch,
		ProductType: typ,
		ProductName: product.Name,
		ModelCode:   model.Code,
		ModelName:   model.Name,
		Sequence:    seq,
		Unit:        fmt.Sprintf("Unit %03d", seq),
	}, nil
}
