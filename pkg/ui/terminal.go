// Package ui renders styled terminal output and live run status
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ASCIILogo is printed at the start of interactive sessions
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════╗
    ║   ██████╗ █████╗ ███╗   ██╗██╗   ██╗ █████╗ ███████╗  ║
    ║  ██╔════╝██╔══██╗████╗  ██║██║   ██║██╔══██╗██╔════╝  ║
    ║  ██║     ███████║██╔██╗ ██║██║   ██║███████║███████╗  ║
    ║  ██║     ██╔══██║██║╚██╗██║╚██╗ ██╔╝██╔══██║╚════██║  ║
    ║  ╚██████╗██║  ██║██║ ╚████║ ╚████╔╝ ██║  ██║███████║  ║
    ║   ╚═════╝╚═╝  ╚═╝╚═╝  ╚═══╝  ╚═══╝  ╚═╝  ╚═╝╚══════╝  ║
    ║           COURSE MATERIAL DOWNLOADER                  ║
    ╚═══════════════════════════════════════════════════════╝
`

var (
	cyan    = lipgloss.Color("#00D7FF")
	yellow  = lipgloss.Color("#FFD700")
	red     = lipgloss.Color("#FF5F5F")
	green   = lipgloss.Color("#5FFF87")
	magenta = lipgloss.Color("#FF5FFF")
	dimGray = lipgloss.Color("#8A8A8A")

	cyanStyle    = lipgloss.NewStyle().Foreground(cyan)
	yellowStyle  = lipgloss.NewStyle().Foreground(yellow)
	redStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	greenStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	magentaStyle = lipgloss.NewStyle().Foreground(magenta)
	dimStyle     = lipgloss.NewStyle().Foreground(dimGray).Faint(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(magenta).
			Padding(0, 2)
)

var (
	mu        sync.Mutex
	out       io.Writer = os.Stdout
	quietMode bool
	noColor   bool
)

// SetOutput redirects all terminal output, mainly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Output returns the current terminal writer
func Output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietMode
}

// SetNoColor disables styling
func SetNoColor(disabled bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disabled
}

func render(style lipgloss.Style, text string) string {
	mu.Lock()
	plain := noColor
	mu.Unlock()
	if plain {
		return text
	}
	return style.Render(text)
}

// Color functions for terminal output
func Cyan(text string) string    { return render(cyanStyle, text) }
func Yellow(text string) string  { return render(yellowStyle, text) }
func Red(text string) string     { return render(redStyle, text) }
func Green(text string) string   { return render(greenStyle, text) }
func Magenta(text string) string { return render(magentaStyle, text) }
func Dim(text string) string     { return render(dimStyle, text) }

// Panel draws text inside a rounded border
func Panel(text string) string { return render(panelStyle, text) }

func writeLine(text string) {
	fmt.Fprintln(Output(), text)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if IsQuietMode() {
		return
	}
	fmt.Fprint(Output(), Cyan(ASCIILogo))
}

// PrintError prints an error message in red. It is shown in quiet mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	writeLine(Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	writeLine(Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(Output(), "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	writeLine(Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if IsQuietMode() {
		return
	}
	writeLine(Magenta(msg))
}
