// cmd/nutrilog/main.go
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"nutrilog/internal/config"
	"nutrilog/internal/logger"
)

const version = "1.0.0"

var CLI struct {
	Version kong.VersionFlag
	EnvFile string `help:"Optional .env file loaded before reading the environment." default:".env" name:"env-file"`

	Serve   ServeCmd   `cmd:"" help:"Run the nutrition HTTP and MCP server." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Create the database schema and exit."`
}

// appContext is handed to every command's Run method.
type appContext struct {
	cfg config.Config
	log *logger.Logger
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("nutrilog"),
		kong.Description("Food logging and nutrition analysis backend"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := ctx.Run(&appContext{cfg: cfg, log: log}); err != nil {
		log.Error("command failed", "command", ctx.Command(), "error", err)
		log.Sync()
		os.Exit(1)
	}
}
