// Package config loads folio settings from a TOML file and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/raster"
	ferrors "github.com/gompdf/folio/pkg/errors"
)

// Environment variables that override file settings
const (
	EnvAddr       = "FOLIO_ADDR"
	EnvProfile    = "FOLIO_PROFILE"
	EnvServiceID  = "FOLIO_EMAILJS_SERVICE_ID"
	EnvTemplateID = "FOLIO_EMAILJS_TEMPLATE_ID"
	EnvPublicKey  = "FOLIO_EMAILJS_PUBLIC_KEY"
)

// Config is the complete application configuration
type Config struct {
	Server  Server  `toml:"server"`
	Export  Export  `toml:"export"`
	Profile Profile `toml:"profile"`
	Contact Contact `toml:"contact"`
}

type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

type Export struct {
	// Page is a preset name: a4, letter or legal
	Page string `toml:"page"`
	// Margin in millimetres
	Margin       float64 `toml:"margin"`
	Scale        float64 `toml:"scale"`
	CaptureWidth float64 `toml:"capture_width"`
	Template     string  `toml:"template"`
}

type Profile struct {
	// Path to a TOML profile; empty uses the built-in sample
	Path string `toml:"path"`
}

type Contact struct {
	// Provider is "emailjs" or "log"
	Provider   string `toml:"provider"`
	ServiceID  string `toml:"service_id"`
	TemplateID string `toml:"template_id"`
	PublicKey  string `toml:"public_key"`
	Endpoint   string `toml:"endpoint"`
}

// Duration decodes TOML strings such as "30s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{2 * time.Minute},
		},
		Export: Export{
			Page:         "a4",
			Margin:       10,
			Scale:        raster.DefaultScale,
			CaptureWidth: raster.DefaultWidth,
			Template:     "ats",
		},
		Contact: Contact{
			Provider: "log",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "failed to read config %s", path)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) bool {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			return true
		}
		return false
	}
	set(&c.Server.Addr, EnvAddr)
	set(&c.Profile.Path, EnvProfile)

	// EmailJS credentials from the environment switch delivery on
	service := set(&c.Contact.ServiceID, EnvServiceID)
	tmpl := set(&c.Contact.TemplateID, EnvTemplateID)
	key := set(&c.Contact.PublicKey, EnvPublicKey)
	if service && tmpl && key {
		c.Contact.Provider = "emailjs"
	}
}

// Validate checks that the export settings describe a usable page
func (c Config) Validate() error {
	fields := ferrors.FieldErrors{}
	if _, err := c.Geometry(); err != nil {
		fields["export"] = ferrors.UserMessage(err)
	}
	if c.Export.Scale <= 0 {
		fields["export.scale"] = "scale must be positive, got " + strconv.FormatFloat(c.Export.Scale, 'g', -1, 64)
	}
	if c.Export.CaptureWidth <= 0 {
		fields["export.capture_width"] = "capture width must be positive"
	}
	switch c.Contact.Provider {
	case "log", "":
	case "emailjs":
		if c.Contact.ServiceID == "" || c.Contact.TemplateID == "" || c.Contact.PublicKey == "" {
			fields["contact"] = "emailjs needs service_id, template_id and public_key"
		}
	default:
		fields["contact.provider"] = "unknown provider " + strconv.Quote(c.Contact.Provider)
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		fields["server"] = "timeouts must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return ferrors.Wrap(ferrors.ErrCodeInvalidConfig, fields, "invalid configuration")
}

// Geometry returns the page geometry of the export settings
func (c Config) Geometry() (pagination.Geometry, error) {
	g, ok := pagination.Named(c.Export.Page)
	if !ok {
		return g, ferrors.New(ferrors.ErrCodeInvalidGeometry, "unknown page size %q", c.Export.Page)
	}
	g.Margin = c.Export.Margin
	if err := g.Validate(); err != nil {
		return g, err
	}
	return g, nil
}

// CaptureOptions returns the rasterizer settings of the export section
func (c Config) CaptureOptions() raster.Options {
	opts := raster.DefaultOptions()
	opts.Width = c.Export.CaptureWidth
	opts.Scale = c.Export.Scale
	return opts
}
