package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpkiconsole/rpkiconsole/internal/config"
	"github.com/rpkiconsole/rpkiconsole/internal/database"
	"github.com/rpkiconsole/rpkiconsole/internal/repository"
	"github.com/rpkiconsole/rpkiconsole/internal/testutil"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

// newE2EApp creates an App against a fake validator and an in-memory
// preferences database. Width and height are left to the caller.
func newE2EApp(t *testing.T, opts Options) (*App, *testutil.FakeValidator) {
	t.Helper()

	fake := testutil.NewFakeValidator(t)
	client, err := validator.New(validator.Options{BaseURL: fake.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("creating validator client: %v", err)
	}

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Table.SearchDebounceMS = 1

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	return New(cfg, client, repository.NewPreferencesRepository(db.DB), opts), fake
}

// newTestApp creates a ready 120x40 App and runs its startup commands to
// completion.
func newTestApp(t *testing.T, opts Options) (*App, *testutil.FakeValidator) {
	t.Helper()

	app, fake := newE2EApp(t, opts)
	t.Cleanup(app.closeAll)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(app, app.Init())
	return app, fake
}

// drain feeds the messages produced by cmd back into app.
func drain(app *App, cmd tea.Cmd) {
	testutil.Drain(func(msg tea.Msg) tea.Cmd {
		_, next := app.Update(msg)
		return next
	}, cmd)
}

// press sends a key to app and runs the resulting commands.
func press(app *App, keys ...string) {
	for _, k := range keys {
		_, cmd := app.Update(testutil.Key(k))
		drain(app, cmd)
	}
}
