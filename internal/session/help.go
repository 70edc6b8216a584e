package session

import (
	"fmt"
	"strings"

	"serialx/internal/serial"
)

// catalogHelp is markdown; the renderer decides whether it is styled.
func catalogHelp(cat *serial.Catalog) string {
	var b strings.Builder
	b.WriteString("## Available products & models\n\n")
	for _, p := range cat.Products() {
		fmt.Fprintf(&b, "- **Product %d**: %s\n", p.Type, p.Name)
		for _, m := range p.Models {
			fmt.Fprintf(&b, "  - Model `%s`: %s\n", m.Code, m.Name)
		}
	}
	b.WriteString("\n## Serial format `YYBB-PMMM-6NNN`\n\n")
	b.WriteString("- `YY` year (20 for 2020, 21 for 2021, etc.)\n")
	b.WriteString("- `BB` batch number (01, 02, etc.)\n")
	fmt.Fprintf(&b, "- `P` product type (%s)\n", productLegend(cat))
	fmt.Fprintf(&b, "- `MMM` model code (%s)\n", strings.Join(allModelCodes(cat), ", "))
	b.WriteString("- `6NNN` unit number (6001 = 1st unit)\n")
	b.WriteString("\nType `help` to show this again, `back` for the menu, `exit` to quit.\n")
	return b.String()
}

// productLegend renders "1=GrainMate, 2=FarmSense".
func productLegend(cat *serial.Catalog) string {
	var parts []string
	for _, p := range cat.Products() {
		parts = append(parts, fmt.Sprintf("%d=%s", p.Type, p.Name))
	}
	return strings.Join(parts, ", ")
}

func modelLegend(cat *serial.Catalog) string {
	var parts []string
	for _, p := range cat.Products() {
		for _, m := range p.Models {
			parts = append(parts, m.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func modelCodes(p serial.Product) []string {
	out := make([]string, 0, len(p.Models))
	for _, m := range p.Models {
		out = append(out, m.Code)
	}
	return out
}

func allModelCodes(cat *serial.Catalog) []string {
	var out []string
	for _, p := range cat.Products() {
		out = append(out, modelCodes(p)...)
	}
	return out
}

// exampleSerials builds two valid serials from the first and last product.
func exampleSerials(cat *serial.Catalog) (string, string) {
	ps := cat.Products()
	first, last := ps[0], ps[len(ps)-1]
	return fmt.Sprintf("2005-%d%s-6100", first.Type, first.Models[len(first.Models)/2].Code),
		fmt.Sprintf("2402-%d%s-6001", last.Type, last.Models[0].Code)
}

func (s *Session) exampleCodes() string {
	a, b := exampleSerials(s.opts.Catalog)
	ca, errA := s.opts.Codec.ToPublic(a)
	cb, errB := s.opts.Codec.ToPublic(b)
	if errA != nil || errB != nil {
		return ""
	}
	return ca + ", " + cb
}
