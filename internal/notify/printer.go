package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Printer writes notices as single styled lines.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	plain bool
}

// NewPrinter creates a Printer. plain disables styling (pipes, tests).
func NewPrinter(w io.Writer, plain bool) *Printer {
	return &Printer{w: w, plain: plain}
}

// Notify implements Notifier.
func (p *Printer) Notify(n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.format(n))
}

func (p *Printer) format(n Notice) string {
	prefix := n.Level.String() + ":"
	if p.plain {
		return prefix + " " + n.Message
	}
	switch n.Level {
	case Info:
		return infoStyle.Render(prefix) + " " + n.Message
	case Warning:
		return warningStyle.Render(prefix) + " " + n.Message
	default:
		return errorStyle.Render(prefix) + " " + n.Message
	}
}
