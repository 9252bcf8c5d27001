package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"sisassist-backend/cmd/sis-cli/config"
	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/internal/components/chrono"
	"sisassist-backend/internal/components/telemetry"
	"sisassist-backend/internal/store"
	"sisassist-backend/pkg/restyutil"

	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool
var dumpDir *string

// cleanup is set up by the root command and run once the command is done.
var cleanup []func(ctx context.Context) error

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "Path to the config file, defaults to the closest sis.json5.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logs.")
	dumpDir = rootCmd.PersistentFlags().String("dump-http", "", "Write every http request and response to files in this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "sis-cli",
	Short: "sis-cli reads classes, grades, assignments and schedules from a student information system.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := config.Read(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		var tel telemetry.API = telemetry.SlogAPI{}
		if cfg.Telemetry.Enabled() {
			otelTel, err := telemetry.Setup(cmd.Context(), "sis-cli", cfg.Telemetry)
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
			cleanup = append(cleanup, otelTel.Shutdown)
			tel, err = telemetry.NewOtelAPI(tel)
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
		}

		clock, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}

		database, err := cfg.Database.OpenDB()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		cleanup = append(cleanup, func(context.Context) error {
			return database.Close()
		})
		err = store.Migrate(cmd.Context(), database)
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		value := &globals.Value{
			Config: cfg,
			Tel:    tel,
			Clock:  clock,
			Store:  store.NewStore(database, clock),
		}
		if *dumpDir != "" {
			output, err := restyutil.NewFilesystemOutput(*dumpDir)
			if err != nil {
				return fmt.Errorf("create dump directory: %w", err)
			}
			value.Dump = output
		}

		cmd.SetContext(globals.Set(cmd.Context(), value))
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanupErr := cleanup[i](context.Background())
		if cleanupErr != nil {
			slog.Warn("cleanup failed", "err", cleanupErr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
