package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/vijay-prabhu/jobscout/internal/collector"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

// Spinner frames for animated progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal provides terminal-aware output utilities
type Terminal struct {
	IsTerminal   bool
	UseColor     bool
	spinnerIndex int
}

// NewTerminal creates a new Terminal instance
func NewTerminal() *Terminal {
	isTerminal := isatty.IsTerminal(os.Stdout.Fd())
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal && os.Getenv("NO_COLOR") == "",
	}
}

// ClearLine clears the current line (terminal only)
func (t *Terminal) ClearLine() {
	if t.IsTerminal {
		fmt.Print("\r\033[K")
	}
}

// Flush ensures output is written immediately
func (t *Terminal) Flush() {
	os.Stdout.Sync()
}

// Spinner returns the next spinner frame
func (t *Terminal) Spinner() string {
	if !t.IsTerminal {
		return ""
	}
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color wraps text in ANSI color codes (terminal only)
func (t *Terminal) Color(color, text string) string {
	if !t.UseColor {
		return text
	}
	return color + text + ColorReset
}

// Counter prints a single-line "label: current/total" progress indicator.
// Off a terminal it prints only the final count. Safe for concurrent use.
func (t *Terminal) Counter(label string) func(current, total int) {
	var mu sync.Mutex
	return func(current, total int) {
		mu.Lock()
		defer mu.Unlock()

		if t.IsTerminal {
			t.ClearLine()
			fmt.Print(t.Color(ColorGreen, fmt.Sprintf("%s: %d/%d", label, current, total)))
			t.Flush()
			return
		}
		if total > 0 && current == total {
			fmt.Printf("%s: %d/%d\n", label, current, total)
		}
	}
}

// FormatETA formats a duration as a human-readable ETA string
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// PhaseColor returns the appropriate color for a sync phase
func PhaseColor(phase collector.ProgressPhase) string {
	switch phase {
	case collector.PhaseFetching:
		return ColorCyan
	case collector.PhaseExtracting:
		return ColorBlue
	case collector.PhaseIngesting:
		return ColorGreen
	default:
		return ColorWhite
	}
}
