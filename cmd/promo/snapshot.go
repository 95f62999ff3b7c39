package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"course-promo/internal/config"
	"course-promo/internal/export"
	"course-promo/internal/logging"
)

const snapshotTimeout = 60 * time.Second

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Refresh the published programs list (programs.json)",
		Long: `snapshot lists current Work24 courses and writes them as
{updated, count, data}. When the API fails an existing file is kept; without
one an empty snapshot is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(root.logJSON, root.verbose)
			if err != nil {
				return errors.Wrap(err, "init logger")
			}
			defer func() { _ = log.Sync() }()

			if outPath == "" {
				outPath = cfg.SnapshotPath
			}
			rows, fetchErr := fetchRows(cmd.Context(), cfg)
			if fetchErr != nil {
				log.Warn("program listing failed", zap.Error(fetchErr))
			}

			written, err := export.RefreshSnapshot(outPath, rows, fetchErr, time.Now())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !written {
				pterm.Info.WithWriter(w).Printfln("kept existing %s", outPath)
				return nil
			}
			pterm.Success.WithWriter(w).Printfln("wrote %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "snapshot path (default from config, data/programs.json)")
	return cmd
}

func fetchRows(ctx context.Context, cfg *config.Config) ([]map[string]any, error) {
	if cfg.Work24.APIKey == "" {
		return nil, errors.WithHint(errors.New("missing Work24 API key"), "set HRD_API_KEY")
	}
	lctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()
	return cfg.Work24Client().ListItems(lctx, cfg.ListParams(time.Now()))
}
