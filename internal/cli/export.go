package cli

import (
	"context"
	"fmt"

	"github.com/gompdf/folio/internal/config"
	"github.com/gompdf/folio/pkg/api"
	"github.com/spf13/cobra"
)

// exportOpts holds the flags of the export command
type exportOpts struct {
	template string
	profile  string
	out      string
	page     string
	margin   float64
	scale    float64
}

func newExportCmd(g *globalOpts) *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a resume as PDF",
		Long: `Export renders the profile with a resume template, captures it and
writes the paginated PDF to the output directory as <Name>_Resume.pdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("template") {
				cfg.Export.Template = opts.template
			}
			if flags.Changed("profile") {
				cfg.Profile.Path = opts.profile
			}
			if flags.Changed("page") {
				cfg.Export.Page = opts.page
			}
			if flags.Changed("margin") {
				cfg.Export.Margin = opts.margin
			}
			if flags.Changed("scale") {
				cfg.Export.Scale = opts.scale
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runExport(cmd, cfg, opts.out)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "ats", "resume template: ats, sidebar, clean")
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "TOML profile (default: built-in sample)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.page, "page", "a4", "page size: a4, letter, legal")
	cmd.Flags().Float64Var(&opts.margin, "margin", 10, "page margin in millimetres")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2.5, "capture supersampling factor")

	return cmd
}

func runExport(cmd *cobra.Command, cfg config.Config, out string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	p, err := loadProfile(cfg.Profile.Path)
	if err != nil {
		return err
	}
	opts, err := apiOptions(ctx, cfg)
	if err != nil {
		return err
	}

	path, res, err := api.NewWithOptions(opts).ExportFile(ctx, p, cfg.Export.Template, out)
	if err != nil {
		return err
	}
	prog.done("Exported resume")

	w := cmd.OutOrStdout()
	printSuccess(w, "Exported %s resume (%s pages, %s bytes)", cfg.Export.Template,
		StyleNumber.Render(fmt.Sprint(res.Pages)), StyleNumber.Render(fmt.Sprint(res.Bytes)))
	printFile(w, path)
	return nil
}

// apiOptions converts the export settings of cfg
func apiOptions(ctx context.Context, cfg config.Config) (api.Options, error) {
	g, err := cfg.Geometry()
	if err != nil {
		return api.Options{}, err
	}
	opts := api.DefaultOptions()
	for _, opt := range []api.Option{
		api.WithPageSize(g.PageWidth, g.PageHeight),
		api.WithMargin(g.Margin),
		api.WithUnit(g.Unit),
		api.WithScale(cfg.Export.Scale),
		api.WithCaptureWidth(cfg.Export.CaptureWidth),
		api.WithLogger(loggerFromContext(ctx)),
	} {
		opt(&opts)
	}
	return opts, nil
}
