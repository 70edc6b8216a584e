package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"serialx/internal/logging"
	"serialx/internal/serial"
	"serialx/internal/telemetry"
	"serialx/internal/transform"
)

var verifyPrompts = map[string]string{
	"encode": "Decode this back to verify? (y/n): ",
	"decode": "Encode this back to verify? (y/n): ",
}

func (s *Session) enter(m mode) {
	s.mode = m
	switch m {
	case modeMenu:
		s.printMenu()
	case modeEncode:
		s.out.printf("\n%s\n\n", s.theme.Title.Render("--- ENCODE A SERIAL ---"))
		s.out.printf("%s\n", s.help)
		a, b := exampleSerials(s.opts.Catalog)
		s.out.printf("Enter a serial number in format YYBB-PMMM-6NNN\n")
		s.out.printf("%s\n", s.theme.Dim.Render(fmt.Sprintf("Examples: %s, %s", a, b)))
		s.out.printf("Enter 'back' to return to main menu\n\n")
	case modeDecode:
		s.out.printf("\n%s\n\n", s.theme.Title.Render("--- DECODE A PUBLIC CODE ---"))
		s.out.printf("Enter an 8-character public code (0-9, A-Z)\n")
		if ex := s.exampleCodes(); ex != "" {
			s.out.printf("%s\n", s.theme.Dim.Render("Examples: "+ex))
		}
		s.out.printf("Enter 'back' to return to main menu\n\n")
	case modeBatch:
		s.wizard = &wizard{}
		s.out.printf("\n%s\n\n", s.theme.Title.Render("--- GENERATE A BATCH ---"))
		s.out.printf("AVAILABLE PRODUCTS:\n")
		for _, p := range s.opts.Catalog.Products() {
			s.out.printf("  %d: %s\n", p.Type, p.Name)
		}
		s.out.printf("\nEnter batch details:\n")
	}
}

func (s *Session) printMenu() {
	cat := s.opts.Catalog
	s.out.printf("\n%s\n", s.theme.Title.Render("SERIAL NUMBER TRANSFORMATION SYSTEM"))
	s.out.printf("Transform YYBB-PMMM-6NNN serials to 8-character public codes\n\n")
	s.out.printf("Products: %s\n", productLegend(cat))
	s.out.printf("Models: %s\n\n", modelLegend(cat))
	s.out.printf("1. Encode a Serial (Original -> Public Code)\n")
	s.out.printf("2. Decode a Public Code (Public Code -> Original)\n")
	s.out.printf("3. Generate a Batch of Serials\n")
	s.out.printf("4. Exit\n\n")
}

func (s *Session) handleMenu(line string) {
	switch line {
	case "1":
		s.enter(modeEncode)
	case "2":
		s.enter(modeDecode)
	case "3":
		s.enter(modeBatch)
	case "4":
		s.terminate("Exited!")
	default:
		s.errorf("Invalid choice. Please enter 1-4.")
	}
}

/* ────────── encode / decode ────────── */

func (s *Session) handleTransform(ctx context.Context, t transform.Transformer, line string) {
	if line == "" {
		return
	}
	input := strings.ToUpper(line)
	res, err := t.Transform(ctx, input)
	s.opts.Metrics.Transforms.WithLabelValues(t.Name(), telemetry.Result(err)).Inc()
	if err != nil {
		logging.L().Debug("transform failed", "op", t.Name(), "input", input, "err", err)
		s.history = append(s.history, Entry{Op: t.Name(), Input: input, Err: err})
		s.errorf("%v", err)
		if errors.Is(err, serial.ErrUnknownProduct) || errors.Is(err, serial.ErrUnknownModel) {
			s.out.printf("   Check product type and model are valid\n")
		}
		return
	}
	logging.L().Debug("transformed", "op", t.Name(), "input", input, "output", res.Output)
	s.history = append(s.history, Entry{Op: t.Name(), Input: input, Output: res.Output})
	s.printResult(res)

	if s.opts.Verify {
		s.ask(verifyPrompts[t.Name()], func() { s.verify(ctx, t, res) }, nil)
	}
}

func (s *Session) printResult(res transform.Result) {
	th := s.theme
	row := func(label, value string) {
		s.out.printf("%s %s\n", th.Label.Render(label), th.Code.Render(value))
	}
	if res.Op == "decode" {
		s.out.printf("\n%s\n", th.Success.Render("DECODING SUCCESSFUL"))
		row("Public Code:    ", res.Public)
		row("Original Serial:", res.Original)
	} else {
		s.out.printf("\n%s\n", th.Success.Render("ENCODING SUCCESSFUL"))
		row("Original Serial:", res.Original)
		row("Public Code:    ", res.Public)
	}

	d := res.Details
	detail := func(label, value string) {
		s.out.printf("  %s %s\n", th.Label.Render(label), th.Value.Render(value))
	}
	s.out.printf("\nProduct Details:\n")
	detail("Product:", d.ProductName)
	detail("Model:  ", d.ModelName)
	detail("Year:   ", d.Year)
	detail("Batch:  ", fmt.Sprint(d.Batch))
	detail("Unit:   ", d.Unit)
	s.out.printf("\n")
}

func (s *Session) verify(ctx context.Context, t transform.Transformer, res transform.Result) {
	back, err := t.Reverse(ctx, res)
	if err == nil && back == res.Input {
		s.out.printf("%s\n", s.theme.Success.Render(fmt.Sprintf("Verification passed: %s -> %s", res.Output, back)))
		return
	}
	s.errorf("Verification failed!")
	if err != nil {
		s.out.printf("   %v\n", err)
		return
	}
	s.out.printf("   Expected: %s\n   Got:      %s\n", res.Input, back)
}

/* ────────── y/n follow-ups ────────── */

type confirmation struct {
	prompt  string
	back    mode
	yes, no func()
}

// ask parks the current mode behind a y/n question. The mode is restored
// before either callback runs, so callbacks may ask again or switch mode.
func (s *Session) ask(prompt string, yes, no func()) {
	s.confirm = &confirmation{prompt: prompt, back: s.mode, yes: yes, no: no}
	s.mode = modeConfirm
}

func (s *Session) handleConfirm(line string) {
	c := s.confirm
	s.confirm = nil
	s.mode = c.back
	switch strings.ToLower(line) {
	case "y", "yes":
		if c.yes != nil {
			c.yes()
		}
	default:
		if c.no != nil {
			c.no()
		}
	}
}
