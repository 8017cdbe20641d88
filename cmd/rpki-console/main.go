// rpki-console is a terminal console for an RPKI validator.
//
// It lists the validated ROAs, the BGP preview and the SLURM filters of a
// running validator, and monitors the trust anchors it validates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rpkiconsole/rpkiconsole/internal/config"
	"github.com/rpkiconsole/rpkiconsole/internal/database"
	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/repository"
	"github.com/rpkiconsole/rpkiconsole/internal/tui"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type flags struct {
	configPath    string
	validatorURL  string
	view          string
	search        string
	trustAnchorID int64
	debug         bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&f.validatorURL, "url", "", "Validator base URL, overrides the configuration")
	flag.StringVar(&f.view, "view", "", "Initial view: trust-anchors, roas, bgp, ignore-filters or whitelist")
	flag.StringVar(&f.search, "search", "", "Initial BGP preview search term")
	flag.Int64Var(&f.trustAnchorID, "ta", 0, "Open the monitor of this trust anchor on startup")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rpki-console version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		// Force exit if the TUI does not unwind in time.
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := run(ctx, f); err != nil {
		slog.Error("application error", "error", err)
		fmt.Fprintln(os.Stderr, "rpki-console:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	cfg, cfgPath, err := config.Load(f.configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if f.validatorURL != "" {
		cfg.Validator.URL = f.validatorURL
	}

	view := models.ViewID(f.view)
	if view != "" && !view.Valid() {
		return fmt.Errorf("unknown view %q", f.view)
	}

	closeLog, err := setupLogging(cfg, f.debug)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("rpki-console starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
		"validator", cfg.Validator.URL,
	)

	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("ensuring data directory: %w", err)
	}

	db, recovery, err := database.OpenWithRecovery(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("opening preferences database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()
	if recovery != database.RecoveryNotNeeded {
		slog.Warn("preferences database recovered", "path", dbPath, "result", recovery)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("preferences database health check: %w", err)
	}

	client, err := validator.New(validator.Options{
		BaseURL:           cfg.Validator.URL,
		Timeout:           cfg.Validator.Timeout(),
		RequestsPerSecond: cfg.Validator.RequestsPerSecond,
		Burst:             cfg.Validator.Burst,
		CacheSize:         cfg.Validator.CacheSize,
		CacheTTL:          cfg.Validator.CacheTTL(),
		Logger:            slog.Default().With("component", "validator"),
	})
	if err != nil {
		return fmt.Errorf("creating validator client: %w", err)
	}

	tui.Version = Version
	tui.BuildTime = BuildTime

	err = tui.Run(cfg, client, repository.NewPreferencesRepository(db.DB), tui.Options{
		InitialView:   view,
		SearchTerm:    f.search,
		TrustAnchorID: f.trustAnchorID,
		Context:       ctx,
		Logger:        slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	slog.Info("rpki-console shutdown complete")
	return nil
}

// setupLogging installs the default logger. With a log file configured the
// output is JSON through a rotating writer, otherwise text on stderr.
func setupLogging(cfg *config.Config, debug bool) (func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	if logPath == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		return func() {}, nil
	}

	w := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
	return func() { w.Close() }, nil
}
