// Command mockgw runs a single gateway instance. It loads config.json and
// script.txt from the current working directory and listens until it
// receives SIGINT or SIGTERM, at which point it exits immediately.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gelbpunkt/mockgw/internal/config"
	"github.com/gelbpunkt/mockgw/internal/gateway"
	"github.com/gelbpunkt/mockgw/internal/script"
)

const (
	configPath = "config.json"
	scriptPath = "script.txt"
)

func main() {
	logger := setupLogger("info")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	sc, err := loadScript(scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, exiting immediately", slog.String("signal", sig.String()))
		os.Exit(0)
	}()

	srv := gateway.NewServer(cfg, sc, logger)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadScript reads and parses scriptPath. A missing file is treated as an
// empty script; a malformed one is fatal.
func loadScript(path string) ([]script.Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading script file %q: %w", path, err)
	}

	actions, err := script.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing script file %q: %w", path, err)
	}
	return actions, nil
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
