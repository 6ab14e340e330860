package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the build information shown by --version. It is called
// from main with values injected through ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOpts holds the flags shared by every command
type globalOpts struct {
	verbose    bool
	configPath string
}

// Execute runs the folio CLI
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var opts globalOpts

	root := &cobra.Command{
		Use:          "folio",
		Short:        "Folio serves a portfolio site and exports resumes as PDF",
		Long:         `Folio renders a personal portfolio and resume builder from a TOML profile, and exports resumes as paginated A4 PDFs.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("folio %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(newServeCmd(&opts))
	root.AddCommand(newExportCmd(&opts))
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newInspectCmd())

	return root
}
