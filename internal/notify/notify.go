// Package notify delivers user-facing notices.
package notify

import (
	"fmt"
	"sync"
)

// Level is the severity of a notice
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Notice is one message shown to the user
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(n Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// Infof sends an info notice.
func Infof(n Notifier, format string, args ...any) {
	n.Notify(Notice{Level: Info, Message: fmt.Sprintf(format, args...)})
}

// Warnf sends a warning notice.
func Warnf(n Notifier, format string, args ...any) {
	n.Notify(Notice{Level: Warning, Message: fmt.Sprintf(format, args...)})
}

// Errorf sends an error notice.
func Errorf(n Notifier, format string, args ...any) {
	n.Notify(Notice{Level: Error, Message: fmt.Sprintf(format, args...)})
}

// Recorder keeps every notice it receives. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// ByLevel returns the recorded notices with the given level.
func (r *Recorder) ByLevel(level Level) []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// Reset drops every recorded notice.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// Pluralize formats a count with its noun, e.g. "1 item", "3 items".
func Pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
