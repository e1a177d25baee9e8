package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
	"github.com/tartampluch/go-rangepicker/internal/server"
	"github.com/tartampluch/go-rangepicker/internal/ui"
)

// main is the process entry point. It delegates to runMain because os.Exit
// skips deferred calls, and the log file must be flushed and closed first.
func main() {
	os.Exit(runMain())
}

// runMain parses flags, configures logging and runs the application.
// It returns config.ExitCodeSuccess or config.ExitCodeError.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	// -lang, -single and -catalog override the stored preferences for this run
	// only; they are never written back.
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	lang := flag.String(config.FlagLang, "", config.FlagDescLang)
	single := flag.Bool(config.FlagSingle, false, config.FlagDescSingle)
	catalog := flag.String(config.FlagCatalog, "", config.FlagDescCatalog)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging
	// -------------------------------------------------------------------------
	// Must precede everything that logs.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signals
	// -------------------------------------------------------------------------
	// The root context is cancelled on SIGINT or SIGTERM. The worker, the HTTP
	// server and the UI bridge below all stop on it.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application
	// -------------------------------------------------------------------------
	overrides := ui.Overrides{
		Language:      *lang,
		SingleDate:    *single,
		CatalogSource: *catalog,
	}
	if err := run(ctx, overrides); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the server, the fetcher and the UI, then blocks in the Fyne loop.
func run(ctx context.Context, overrides ui.Overrides) error {
	// The ID scopes the preferences store and the tray registration.
	a := app.NewWithID(config.AppID)

	// Recorded so a later version can migrate preferences.
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	// The port is read once; changing it in the settings takes effect on the
	// next start.
	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	srv := server.NewRangeServer(port)
	fetcher := engine.NewHTTPFetcher()

	gui := ui.NewRangePickerApp(a, ctx, srv, fetcher, overrides)

	// Bridge from the signal context to the Fyne loop.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	// Blocks until the application quits.
	gui.Run()
	return nil
}

// printVersion writes the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo records the build and runtime environment.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog handler writing to stdout and, when the
// cache directory is usable, to a log file truncated on each start.
func setupLogging(debugMode bool) io.Closer {
	// Stdout always; the file is best effort.
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC: the file holds the current run only.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	// -debug lowers the level and adds file:line to every record.
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath returns the log location inside the user cache directory,
// creating the application folder with owner-only permissions.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
