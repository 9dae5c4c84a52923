// Package output prints styled messages for the wrapper command line.
//
// Messages go to standard output unless SetOutput redirects them. Styling
// uses lipgloss and degrades to plain text when the writer is not a
// terminal.
//
//	output.Success("Backup finished")
//	output.Error("borg create failed: Repository does not exist")
//	output.Step("borg init --encryption none /srv/backup")
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetVerbose enables or disables verbose output.
// The wrapper calls it when --verbose is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetOutput redirects every message to w and returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func printStyled(style lipgloss.Style, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, style.Render(msg))
}

// Success prints a green confirmation for a completed task
func Success(msg string) {
	printStyled(successStyle, "✔ "+msg)
}

// Error prints a failure in red.
//
// Example:
//
//	output.Error("Missing required configuration entries: paths")
func Error(msg string) {
	printStyled(errorStyle, "✘ "+msg)
}

// Info prints a status update in cyan
func Info(msg string) {
	printStyled(infoStyle, "ℹ "+msg)
}

// Step prints an indented item in gray, such as a rendered command or a
// template name.
func Step(msg string) {
	printStyled(stepStyle, "   "+msg)
}

// Verbose prints msg only in verbose mode
func Verbose(msg string) {
	mu.Lock()
	enabled := verboseMode
	mu.Unlock()

	if enabled {
		printStyled(stepStyle, "… "+msg)
	}
}
