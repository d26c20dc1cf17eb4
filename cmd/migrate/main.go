package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Reissam/ajuda-tech-hub/internal/config"
	"github.com/Reissam/ajuda-tech-hub/internal/database"
	"github.com/Reissam/ajuda-tech-hub/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|up-to|down-to")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for up-to and down-to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	l := logger.New(logger.Options{Env: cfg.Env, Level: cfg.LogLevel, Console: cfg.LogConsole}).
		With().Str("cmd", *cmd).Logger()

	var args []string
	switch *cmd {
	case "up", "down", "status", "version", "redo":
	case "up-to", "down-to":
		if *version == "" {
			fmt.Fprintf(os.Stderr, "missing -version for %s\n", *cmd)
			os.Exit(1)
		}
		args = append(args, *version)
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := database.MigratePool(ctx, pool, *cmd, args...); err != nil {
		l.Error().Err(err).Msg("migration failed")
		pool.Close()
		os.Exit(1)
	}
	l.Info().Msg("migration complete")
}
