package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorTitle   = lipgloss.Color("#7C3AED")
)

// styles are bound to one writer so colour is only emitted on terminals.
type styles struct {
	err     lipgloss.Style
	warning lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		err:     r.NewStyle().Bold(true).Foreground(colorError),
		warning: r.NewStyle().Foreground(colorWarning),
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}
