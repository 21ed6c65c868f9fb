package main

import (
	"fmt"
	"os"

	"hatirlat/internal/cli"
	"hatirlat/internal/config"
	"hatirlat/internal/logger"

	"github.com/alecthomas/kong"
	"github.com/jmhodges/clock"
)

var CLI struct {
	Version kong.VersionFlag
	EnvFile string `help:"Env file loaded before the environment." default:".env" type:"path"`
	Dummy   bool   `help:"Keep data in memory with demo content, ignoring database settings."`
	Debug   bool   `help:"Enable debug logging."`

	Serve         cli.ServeCmd         `cmd:"" help:"Run the HTTP API and the reminder dispatcher." default:"1"`
	Migrate       cli.MigrateCmd       `cmd:"" help:"Create or update the database schema."`
	Dispatch      cli.DispatchCmd      `cmd:"" help:"Deliver due reminders once and exit."`
	CreateAccount cli.CreateAccountCmd `cmd:"" help:"Create an account."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("hatirlat"),
		kong.Description("Reminder service with group invites and multi-channel delivery"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.Dummy {
		cfg.DummyMode = true
	}
	if CLI.Debug {
		cfg.LogDebug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.LogDebug, Dir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Config: cfg,
		Clock:  clock.New(),
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("Command failed", "err", err)
		os.Exit(1)
	}
}
