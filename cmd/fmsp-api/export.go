package main

import (
	"fmt"
	"os"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every medication as an export envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			meds := service.NewMedicationService(st, nil, nil, logger)
			data, name, err := meds.Export(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if out == "-" {
				out = name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			logger.Info("Export written", zap.String("path", out), zap.Int("bytes", len(data)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output file ("-" uses the dated default name); stdout when empty`)
	return cmd
}
