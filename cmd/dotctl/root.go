package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MGhunch/dot-file/internal/config"
	"github.com/MGhunch/dot-file/pkg/database"
)

type commandContext struct {
	verbose bool
	cfg     *config.Config
}

func (c *commandContext) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) logger() *slog.Logger {
	if !c.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// open connects to the configured database. Callers close the returned pool.
func (c *commandContext) open(cmd *cobra.Command) (*sql.DB, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	db, err := database.New(&cfg.Database, c.logger())
	if err != nil {
		return nil, err
	}
	conn := db.Connection()
	if err := conn.PingContext(cmd.Context()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.Database.Name, err)
	}
	return conn, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "dotctl",
		Short:         "dot-file operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newClientsCommand(ctx))
	rootCmd.AddCommand(newActivityCommand(ctx))

	return rootCmd
}
