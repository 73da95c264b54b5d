// Harold relays AI coding agent turn completions to iMessage and routes
// the user's replies back to the correct agent session.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kahgeh/harold/internal/config"
	"github.com/kahgeh/harold/internal/diagnostics"
	"github.com/kahgeh/harold/internal/supervisor"
)

const (
	exitOK                  = 0
	exitConfigError         = 1
	exitRuntimeError        = 2
	defaultDiagDelaySeconds = 10
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	os.Exit(run())
}

func run() int {
	configDir := flag.String("config-dir",
		getEnv("HAROLD_CONFIG_DIR", ""),
		"Path to configuration directory")
	runDiagnostics := flag.Bool("diagnostics", false, "print config and exercise notification paths, then exit")
	delay := flag.Int("delay", 0, "seconds to sleep before diagnostics probes the lock state (default 10 if --diagnostics is set without --delay)")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("no .env file at %s, continuing with existing environment", envPath)
	}

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		log.Printf("configuration error: %v", err)
		return exitConfigError
	}

	setupLogging(cfg.Log.Level)

	ctx := context.Background()

	if *runDiagnostics {
		delaySeconds := *delay
		if delaySeconds == 0 {
			delaySeconds = defaultDiagDelaySeconds
		}
		if err := diagnostics.Run(ctx, cfg, delaySeconds); err != nil {
			slog.Error("diagnostics failed", "error", err)
			return exitRuntimeError
		}
		return exitOK
	}

	if err := supervisor.Run(ctx, cfg); err != nil {
		slog.Error("harold exited with error", "error", err)
		return exitRuntimeError
	}
	return exitOK
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
