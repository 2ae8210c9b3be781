package cmd

import (
	"os"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
)

// Color palette
var (
	primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	success = lipgloss.Color("#22C55E") // Green
	failure = lipgloss.Color("#F43F5E") // Rose
	textDim = lipgloss.Color("#94A3B8") // Slate
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	correctStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(failure)

	dimStyle = lipgloss.NewStyle().
			Foreground(textDim)
)

// colorOutput is false when stdout is redirected or NO_COLOR is set, so
// piped output stays plain text.
var colorOutput = term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

func styled(s lipgloss.Style, text string) string {
	if !colorOutput {
		return text
	}
	return s.Render(text)
}
