package tui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func startE2E(t *testing.T, width, height int, opts Options) *teatest.TestModel {
	t.Helper()

	app, _ := newE2EApp(t, opts)
	tm := teatest.NewTestModel(t, app, teatest.WithInitialTermSize(width, height))
	t.Cleanup(func() {
		tm.Quit()
	})
	return tm
}

// waitFor waits until the output contains the given text.
func waitFor(t *testing.T, tm *teatest.TestModel, text string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte(text))
	}, teatest.WithDuration(5*time.Second))
}

func TestE2E_TrustAnchorsOnStartup(t *testing.T) {
	tm := startE2E(t, 120, 40, Options{})

	waitFor(t, tm, "TRUST ANCHORS")
	waitFor(t, tm, "Showing 1 to 4 of 4 entries")
}

func TestE2E_RoasPagingAndSearch(t *testing.T) {
	tm := startE2E(t, 120, 40, Options{})
	waitFor(t, tm, "TRUST ANCHORS")

	tm.Send(tea.KeyMsg{Type: tea.KeyF3})
	waitFor(t, tm, "Showing 1 to 10 of 40 entries")

	tm.Send(tea.KeyMsg{Type: tea.KeyRight})
	waitFor(t, tm, "Showing 11 to 20 of 40 entries")

	tm.Type("/bobo")
	waitFor(t, tm, "(filtered from 40 total entries)")
}

func TestE2E_HelpAndBack(t *testing.T) {
	tm := startE2E(t, 120, 40, Options{})
	waitFor(t, tm, "TRUST ANCHORS")

	tm.Send(tea.KeyMsg{Type: tea.KeyF1})
	waitFor(t, tm, "NAVIGATION")

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	waitFor(t, tm, "Enter:Monitor")
}

func TestE2E_MonitorFromCommandLine(t *testing.T) {
	tm := startE2E(t, 140, 50, Options{TrustAnchorID: 1})

	waitFor(t, tm, "TRUST ANCHOR MONITOR")
	waitFor(t, tm, "Manifest 0 is stale")
}

func TestE2E_QuitFlow(t *testing.T) {
	app, _ := newE2EApp(t, Options{})
	tm := teatest.NewTestModel(t, app, teatest.WithInitialTermSize(120, 40))
	waitFor(t, tm, "TRUST ANCHORS")

	tm.Type("q")
	waitFor(t, tm, "CONFIRM EXIT")

	tm.Type("y")

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	final, ok := fm.(*App)
	if !ok {
		t.Fatalf("Expected *App, got %T", fm)
	}
	if !final.quitting {
		t.Error("Expected app to be quitting")
	}
}

func TestE2E_QuitCancel(t *testing.T) {
	tm := startE2E(t, 120, 40, Options{})
	waitFor(t, tm, "TRUST ANCHORS")

	tm.Send(tea.KeyMsg{Type: tea.KeyF10})
	waitFor(t, tm, "Are you sure you want to exit?")

	tm.Type("n")
	waitFor(t, tm, "Showing 1 to 4 of 4 entries")
}

func TestE2E_StatusBar(t *testing.T) {
	tm := startE2E(t, 120, 40, Options{})

	for _, key := range []string{"[F1]Help", "[F3]ROAs", "[F10]Quit"} {
		waitFor(t, tm, key)
	}
}

func TestE2E_TerminalSizes(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"narrow", 80, 24},
		{"wide", 200, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := startE2E(t, tt.width, tt.height, Options{})
			waitFor(t, tm, "RPKI VALIDATOR CONSOLE")
			waitFor(t, tm, "TRUST ANCHORS")
		})
	}
}
