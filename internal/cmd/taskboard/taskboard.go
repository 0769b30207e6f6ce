// Package taskboard parses taskboard configuration and builds the CLI commands.
package taskboard

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	entrypoint "github.com/louisbranch/taskboard/internal/platform/cmd"
	"github.com/louisbranch/taskboard/internal/platform/config"
	"github.com/louisbranch/taskboard/internal/platform/otel"
	server "github.com/louisbranch/taskboard/internal/services/project/app"
)

// Config holds taskboard command configuration.
type Config struct {
	HTTPAddr           string   `env:"TASKBOARD_HTTP_ADDR" envDefault:":8080"`
	Storage            string   `env:"TASKBOARD_STORAGE" envDefault:"sqlite"`
	SQLitePath         string   `env:"TASKBOARD_SQLITE_PATH" envDefault:"data/taskboard.db"`
	DatabaseURL        string   `env:"TASKBOARD_DATABASE_URL"`
	LogLevel           string   `env:"TASKBOARD_LOG_LEVEL" envDefault:"info"`
	CORSOrigins        []string `env:"TASKBOARD_CORS_ORIGINS" envSeparator:","`
	MaxCommandAttempts int      `env:"TASKBOARD_MAX_COMMAND_ATTEMPTS" envDefault:"3"`
	OTelEndpoint       string   `env:"TASKBOARD_OTEL_ENDPOINT"`
	OTelEnabled        bool     `env:"TASKBOARD_OTEL_ENABLED" envDefault:"true"`
}

// LoadConfig merges an optional .env file into the environment and parses Config.
func LoadConfig(dotEnvPath string) (Config, error) {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) storeConfig() server.StoreConfig {
	return server.StoreConfig{
		Driver:      c.Storage,
		SQLitePath:  c.SQLitePath,
		DatabaseURL: c.DatabaseURL,
	}
}

func (c Config) telemetry() otel.Settings {
	return otel.Settings{
		Endpoint: strings.TrimSpace(c.OTelEndpoint),
		Disabled: !c.OTelEnabled,
	}
}

// NewRootCmd builds the taskboard command tree. Flags override values from
// cfg, which callers load from the environment.
func NewRootCmd(cfg *Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Event-sourced project and task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage driver: sqlite, postgres or memory")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(cfg),
		newMigrateCmd(cfg),
		newReplayCmd(cfg),
		newVerifyCmd(cfg),
	)
	return root
}

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := entrypoint.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			return entrypoint.RunWithTelemetry(cmd.Context(), entrypoint.ServiceTaskboard, entrypoint.RunOptions{
				Telemetry: cfg.telemetry(),
				Logger:    logger,
			}, func(ctx context.Context) error {
				return server.Run(ctx, server.Config{
					Addr:               cfg.HTTPAddr,
					Storage:            cfg.Storage,
					SQLitePath:         cfg.SQLitePath,
					DatabaseURL:        cfg.DatabaseURL,
					CORSOrigins:        cfg.CORSOrigins,
					MaxCommandAttempts: cfg.MaxCommandAttempts,
					Logger:             logger,
				})
			})
		},
	}
	cmd.Flags().StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	cmd.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origin", cfg.CORSOrigins, "Allowed CORS origin (repeatable)")
	cmd.Flags().IntVar(&cfg.MaxCommandAttempts, "max-command-attempts", cfg.MaxCommandAttempts, "Decide/append rounds per command before giving up")
	return cmd
}
