package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for console output
type Theme struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Code    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warn    lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultTheme is the default color scheme
var DefaultTheme = Theme{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	Code:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// PlainTheme renders every string unchanged.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Title: s, Label: s, Value: s, Code: s, Success: s, Error: s, Warn: s, Dim: s}
}

type Options struct {
	Color    bool
	Markdown bool
	Width    int
}

// Renderer bundles the theme with an optional markdown renderer for help
// text. Without markdown the source text is printed as is.
type Renderer struct {
	Theme Theme
	md    *glamour.TermRenderer
}

func NewRenderer(opts Options) (*Renderer, error) {
	r := &Renderer{Theme: PlainTheme()}
	if !opts.Color {
		return r, nil
	}
	r.Theme = DefaultTheme
	if opts.Markdown {
		width := opts.Width
		if width <= 0 {
			width = 80
		}
		md, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return nil, err
		}
		r.md = md
	}
	return r, nil
}

// Markdown renders src, falling back to the raw text on failure.
func (r *Renderer) Markdown(src string) string {
	if r.md == nil {
		return src
	}
	out, err := r.md.Render(src)
	if err != nil {
		return src
	}
	return out
}
