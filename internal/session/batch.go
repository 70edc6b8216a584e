package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"serialx/internal/logging"
	"serialx/internal/serial"
	"serialx/internal/telemetry"
	"serialx/sink"
)

type step int

const (
	stepYear step = iota
	stepBatch
	stepProduct
	stepModel
	stepStart
	stepEnd
)

// wizard collects a BatchRequest one field per line.
type wizard struct {
	step step
	req  serial.BatchRequest
}

func (w *wizard) prompt(cat *serial.Catalog) string {
	switch w.step {
	case stepYear:
		return "Year (last 2 digits, e.g., 24 for 2024): "
	case stepBatch:
		return "Batch number (e.g., 1): "
	case stepProduct:
		return fmt.Sprintf("Product type (%s): ", productLegend(cat))
	case stepModel:
		p, _ := cat.Product(w.req.ProductType)
		return fmt.Sprintf("Model code (e.g., %s): ", strings.Join(modelCodes(p), ", "))
	case stepStart:
		return "Starting unit number (e.g., 1): "
	default:
		return "Ending unit number (e.g., 10): "
	}
}

func (s *Session) handleWizard(ctx context.Context, line string) {
	w := s.wizard
	cat := s.opts.Catalog

	if w.step == stepModel {
		p, _ := cat.Product(w.req.ProductType)
		if _, ok := p.Model(line); !ok {
			s.errorf("Invalid model. Available models: %s", strings.Join(modelCodes(p), ", "))
			return
		}
		w.req.ModelCode = line
		w.step++
		return
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		s.errorf("Invalid input - please enter a valid number")
		return
	}
	switch w.step {
	case stepYear:
		if n < 0 || n > 99 {
			s.errorf("Year must be between 0 and 99")
			return
		}
		w.req.Year = n
	case stepBatch:
		if n < 0 || n > 99 {
			s.errorf("Batch number must be between 0 and 99")
			return
		}
		w.req.Batch = n
	case stepProduct:
		p, ok := cat.Product(n)
		if !ok {
			s.errorf("Invalid product type. Must be one of: %s", productLegend(cat))
			return
		}
		w.req.ProductType = n
		s.out.printf("\nAvailable models for %s:\n", p.Name)
		for _, m := range p.Models {
			s.out.printf("  %s: %s\n", m.Code, m.Name)
		}
	case stepStart:
		if n < 0 || n > 999 {
			s.errorf("Unit number must be between 0 and 999")
			return
		}
		w.req.StartUnit = n
	case stepEnd:
		if n < 0 || n > 999 {
			s.errorf("Unit number must be between 0 and 999")
			return
		}
		if n < w.req.StartUnit {
			s.errorf("Starting unit must be less than or equal to ending unit")
			return
		}
		w.req.EndUnit = n
		if w.req.EndUnit-w.req.StartUnit > s.opts.WarnAbove {
			s.warnf("Generating more than %d units", s.opts.WarnAbove)
			s.ask("Continue? (y/n): ", func() { s.generate(ctx) }, func() { s.enter(modeMenu) })
			return
		}
		s.generate(ctx)
		return
	}
	w.step++
}

func (s *Session) generate(ctx context.Context) {
	req := s.wizard.req
	th := s.theme

	s.out.printf("\nGenerating %d serials...\n", req.Size())
	b, err := serial.GenerateBatch(s.opts.Codec, s.opts.Catalog, req)
	if err != nil {
		s.errorf("%v", err)
		s.enter(modeMenu)
		return
	}
	s.opts.Metrics.BatchUnits.Add(float64(len(b.Items)))
	logging.L().Info("batch generated", "batch", req.ID(), "product", b.Product.Name, "model", b.Model.Name, "units", len(b.Items))

	s.out.printf("\n%s\n", th.Title.Render(fmt.Sprintf("BATCH: %s %s", b.Product.Name, b.Model.Name)))
	s.out.printf("Batch ID: %s\n", req.ID())
	s.out.printf("Units: %03d to %03d\n", req.StartUnit, req.EndUnit)
	s.out.printf("\nCSV Format (copy to spreadsheet):\n")
	if s.out.err == nil {
		if err := s.opts.Display.Push(ctx, b); err != nil {
			s.out.err = err
			return
		}
	}

	s.out.printf("\nSummary:\n")
	s.out.printf("  Product: %s %s\n", b.Product.Name, b.Model.Name)
	s.out.printf("  Batch: %s\n", req.ID())
	s.out.printf("  Total units: %d\n", len(b.Items))
	s.out.printf("  Range: Unit %03d to Unit %03d\n", req.StartUnit, req.EndUnit)

	first, last := b.Items[0], b.Items[len(b.Items)-1]
	s.out.printf("\nSample verification:\n")
	s.out.printf("  First unit: %s -> %s\n", first.Original, th.Code.Render(first.Public))
	if len(b.Items) > 1 {
		s.out.printf("  Last unit:  %s -> %s\n", last.Original, th.Code.Render(last.Public))
	}
	if decoded, err := s.opts.Codec.ToOriginal(first.Public); err == nil && decoded == first.Original {
		s.out.printf("  %s\n", th.Success.Render("Round-trip verified for first unit"))
	} else {
		s.out.printf("  %s\n", th.Error.Render("ERROR: Round-trip failed for first unit!"))
	}

	if len(s.opts.Sinks) == 0 {
		s.enter(modeMenu)
		return
	}
	s.out.printf("\n")
	s.ask("Save batch? (y/n): ",
		func() {
			s.save(ctx, b)
			s.enter(modeMenu)
		},
		func() { s.enter(modeMenu) })
}

func (s *Session) save(ctx context.Context, b *serial.Batch) {
	for _, bnd := range s.opts.Sinks {
		err := bnd.Adapter.Push(ctx, b)
		s.opts.Metrics.SinkPushes.WithLabelValues(bnd.Name, telemetry.Result(err)).Inc()
		if err != nil {
			logging.L().Warn("batch save failed", "sink", bnd.Name, "err", err)
			s.errorf("save to %s failed: %v", bnd.Name, err)
			continue
		}
		where := bnd.Name
		if loc, ok := bnd.Adapter.(sink.Locator); ok {
			where = loc.Location(b)
		}
		s.out.printf("%s\n", s.theme.Success.Render("Saved to "+where))
	}
}
