package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/config"
	"github.com/gompdf/folio/internal/contact"
	"github.com/gompdf/folio/internal/export"
	"github.com/gompdf/folio/internal/profile"
	"github.com/gompdf/folio/internal/raster"
	"github.com/gompdf/folio/internal/res"
	"github.com/gompdf/folio/internal/site"
	"github.com/gompdf/folio/internal/templates"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio site and resume builder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	srv, err := newSite(cfg, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// newSite wires a site.Server from cfg
func newSite(cfg config.Config, logger *log.Logger) (*site.Server, error) {
	p, err := loadProfile(cfg.Profile.Path)
	if err != nil {
		return nil, err
	}
	geometry, err := cfg.Geometry()
	if err != nil {
		return nil, err
	}

	set, err := templates.New()
	if err != nil {
		return nil, err
	}
	exp := export.New(set, raster.NewCanvas(res.NewLoader(""), logger), export.Options{
		Geometry: geometry,
		Capture:  cfg.CaptureOptions(),
		Creator:  "folio " + version,
	}, logger)

	return site.New(p, set, exp, newSender(cfg.Contact, logger), site.Options{
		DefaultTemplate: cfg.Export.Template,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
	}, logger)
}

// newSender picks the contact delivery of the configured provider
func newSender(c config.Contact, logger *log.Logger) contact.Sender {
	if c.Provider != "emailjs" {
		logger.Debug("contact messages are logged, not sent")
		return contact.LogSender{Logger: logger}
	}
	s := contact.NewEmailJS(c.ServiceID, c.TemplateID, c.PublicKey)
	if c.Endpoint != "" {
		s.Endpoint = c.Endpoint
	}
	return s
}

// loadProfile reads path, or returns the built-in sample when path is empty
func loadProfile(path string) (*profile.Profile, error) {
	if path == "" {
		return profile.Default(), nil
	}
	return profile.Load(path)
}
