package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// ShowCommand displays a command the user may run
func ShowCommand(title, command string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", title)
	fmt.Printf("  %s\n\n", command)
}

// ShowSection prints a bold heading
func ShowSection(title string) {
	bold := color.New(color.Bold)
	bold.Printf("\n%s\n", title)
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}
