// Command promo turns upcoming training courses into marketing artifacts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	jsonPath   string
	force      bool
	upload     bool
	verbose    int
	logJSON    bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "promo",
		Short: "Generate card news, blog posts and social copy for new training courses",
		Long: `promo fetches upcoming courses from Work24 (or a local JSON file), skips the
ones already in the ledger and renders card news, blog posts, captions, reels
scripts and posting guides for the rest.

Examples:
  promo                          # fetch from Work24 and render new courses
  promo --json courses.json      # render from a local course list
  promo --force                  # clear the ledger and regenerate everything
  promo snapshot                 # refresh data/programs.json
  promo ledger list              # show processed courses`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPromo(cmd, o)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "optional YAML config file")
	pf.CountVarP(&o.verbose, "verbose", "v", "more log output (-v debug)")
	pf.BoolVar(&o.logJSON, "log-json", false, "JSON logs for schedulers")

	f := cmd.Flags()
	f.StringVar(&o.jsonPath, "json", "", "read courses from a local JSON file instead of Work24")
	f.BoolVar(&o.force, "force", false, "clear the ledger and regenerate every course")
	f.BoolVar(&o.upload, "upload", false, "upload new artifacts over SFTP")

	cmd.AddCommand(newSnapshotCmd(o), newLedgerCmd(o))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		stop()
		os.Exit(1)
	}
}
