package main

import (
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"course-promo/internal/config"
	"course-promo/internal/export"
	"course-promo/internal/ledger"
)

func newLedgerCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the processed-courses ledger",
	}
	cmd.AddCommand(newLedgerListCmd(root), newLedgerExportCmd(root))
	return cmd
}

func loadLedger(cmd *cobra.Command, root *rootOptions) (ledger.Ledger, error) {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return nil, err
	}
	store, err := ledger.OpenDir(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(cmd.Context())
}

func newLedgerListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processed courses, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := loadLedger(cmd, root)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(l) == 0 {
				pterm.Info.WithWriter(w).Println("ledger is empty")
				return nil
			}

			rows := pterm.TableData{{"Key", "Title", "Period", "Generated", "Files"}}
			for _, e := range l.Entries() {
				n := 0
				for _, paths := range e.Files {
					n += len(paths)
				}
				generated := ""
				if !e.GeneratedAt.IsZero() {
					generated = e.GeneratedAt.In(ledger.LegacyZone).Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{e.Key, e.Title, e.Period, generated, strconv.Itoa(n)})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render()
		},
	}
}

func newLedgerExportCmd(root *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := loadLedger(cmd, root)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.Wrapf(err, "create %s", outPath)
				}
				defer f.Close()
				w = f
			}
			if err := export.WriteLedgerCSV(w, l); err != nil {
				return errors.Wrap(err, "write ledger csv")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "CSV file (default stdout)")
	return cmd
}
