// Package cliui provides reusable terminal UI helpers (spinners, step
// indicators, styles, markdown rendering) for kotori CLI commands.
package cliui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true)
	HeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true).Underline(true)
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	PreviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true)
	PromptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// agentColors gives each responding agent a stable badge color.
var agentColors = map[string]string{
	"welcome":    "219",
	"qna":        "117",
	"emotional":  "211",
	"suggestion": "150",
}

// spinnerFrames matches bubbles' spinner.Dot used by the chat TUI.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var mu sync.Mutex

	go func() {
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)

	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// AgentBadge renders an agent name in its badge color.
func AgentBadge(agent string) string {
	color, ok := agentColors[agent]
	if !ok {
		color = "245"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render("[" + agent + "]")
}

// Preview flattens s onto one line and truncates it to width cells.
func Preview(s string, width int) string {
	flat := strings.Join(strings.Fields(s), " ")
	return ansi.Truncate(flat, width, "…")
}

// Wrap hard-wraps s at width cells, preserving ANSI sequences.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wordwrap(s, width, "")
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// markdownStyle picks glamour's dark or light theme from the terminal
// background.
func markdownStyle() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// RenderMarkdown renders markdown content for terminal display using glamour.
// On error the input is returned unchanged alongside the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
