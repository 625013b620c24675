package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"girder/internal/driver"
	"girder/internal/ui"
)

// progressMode decides whether a batch run gets the interactive TUI.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressAlways
	progressNever
)

func parseProgressMode(value string) (progressMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return progressAuto, nil
	case "on":
		return progressAlways, nil
	case "off":
		return progressNever, nil
	default:
		return 0, fmt.Errorf("--ui must be auto, on or off, got %q", value)
	}
}

// interactive reports whether the TUI should run for the given output.
// Auto falls back to terminal detection.
func (m progressMode) interactive(out *os.File) bool {
	switch m {
	case progressAlways:
		return true
	case progressNever:
		return false
	default:
		return isTerminal(out)
	}
}

type batchOutcome struct {
	results []driver.Result
	err     error
}

// runBatchWithUI runs the translation batch behind a progress TUI. The batch
// runs on its own goroutine; the event channel closing quits the program.
func runBatchWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		results, err := driver.TranslateAll(ctx, files, optsCopy)
		outcomeCh <- batchOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
