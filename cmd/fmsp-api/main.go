package main

import (
	"os"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/config"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "fmsp-api",
		Short: "Household medication plan API server",
		// Running the bare binary serves.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), false)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every command shares
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
