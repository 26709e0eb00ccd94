// ABOUTME: Entry point that runs the Bubble Tea program for the terminal UI.
// ABOUTME: Owns program options; the model itself lives in model.go.

package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the terminal interface over the given controller and blocks
// until the user quits.
func Run(ctrl Controller) error {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
