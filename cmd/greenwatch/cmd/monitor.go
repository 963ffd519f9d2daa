package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenwatch/greenwatch/internal/config"
	"github.com/greenwatch/greenwatch/internal/githost"
	"github.com/greenwatch/greenwatch/internal/gmt"
	"github.com/greenwatch/greenwatch/internal/monitor"
	"github.com/greenwatch/greenwatch/internal/store"
)

var (
	monitorConfigPath string
	monitorStatePath  string
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run one poll cycle over the configured repos",
	Long: `Check every configured repo for new commits and submit measurement jobs
to the Green Metrics Tool API for the ones that changed. Designed to run
from cron or a systemd timer.

Examples:
  # Default file backend
  greenwatch monitor --config config.json --state repo_state.json

  # SQLite state backend
  GREENWATCH_STATE_BACKEND=sqlite GREENWATCH_STATE_DSN=greenwatch.db greenwatch monitor`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		cfg, err := config.Load(monitorConfigPath)
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		st, err := openStore(cmd.Context(), logger)
		if err != nil {
			return fmt.Errorf("error opening state store: %v", err)
		}
		defer st.Close()

		resolver := githost.NewResolver(cfg.API.RequestTimeout())
		client := gmt.NewClient(cfg.API.BaseURL(), cfg.API.AuthToken(), cfg.API.RequestTimeout())

		return monitor.New(resolver, client, st, logger).Run(cmd.Context(), cfg)
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorConfigPath, "config", "config.json", "Path to the monitor config file")
	monitorCmd.Flags().StringVar(&monitorStatePath, "state", "repo_state.json", "Path to the state file (file backend only)")

	rootCmd.AddCommand(monitorCmd)
}

// openStore selects the state backend from the environment.
func openStore(ctx context.Context, logger *slog.Logger) (store.Store, error) {
	backend := strings.TrimSpace(os.Getenv("GREENWATCH_STATE_BACKEND"))
	switch backend {
	case "", "file":
		return store.NewFileStore(monitorStatePath, logger), nil
	case "sqlite":
		path := strings.TrimSpace(os.Getenv("GREENWATCH_STATE_DSN"))
		if path == "" {
			path = "greenwatch.db"
		}
		return store.NewSQLiteStore(path)
	case "postgres":
		dsn := strings.TrimSpace(os.Getenv("GREENWATCH_STATE_DSN"))
		if dsn == "" {
			return nil, fmt.Errorf("GREENWATCH_STATE_DSN is required for postgres")
		}
		return store.NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown state backend: %s", backend)
	}
}
