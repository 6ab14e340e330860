package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gompdf/folio/pkg/errors"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	g, err := cfg.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if g.ContentWidth() != 190 || g.ContentHeight() != 277 {
		t.Errorf("geometry = %+v", g)
	}
	if opts := cfg.CaptureOptions(); opts.Width != 794 || opts.Scale != 2.5 {
		t.Errorf("capture = %+v", opts)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	data := `
[server]
addr = ":9000"
write_timeout = "45s"

[export]
page = "letter"
margin = 12.5
template = "sidebar"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" && os.Getenv(EnvAddr) == "" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.WriteTimeout.Duration != 45*time.Second || cfg.Server.ReadTimeout.Duration != 15*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}
	if cfg.Export.Template != "sidebar" || cfg.Export.Scale != 2.5 {
		t.Errorf("export = %+v", cfg.Export)
	}
	g, _ := cfg.Geometry()
	if g.PageWidth != 215.9 || g.Margin != 12.5 {
		t.Errorf("geometry = %+v", g)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err != nil {
		t.Errorf("missing file error = %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[export\n"), 0o644)
	if _, err := Load(bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("syntax error = %v, want INVALID_CONFIG", err)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name     string
		vars     map[string]string
		addr     string
		provider string
	}{
		{"none", nil, ":8080", "log"},
		{"addr", map[string]string{EnvAddr: " :7000 "}, ":7000", "log"},
		{"blank addr", map[string]string{EnvAddr: "  "}, ":8080", "log"},
		{"partial emailjs", map[string]string{EnvServiceID: "svc"}, ":8080", "log"},
		{"emailjs", map[string]string{EnvServiceID: "svc", EnvTemplateID: "tpl", EnvPublicKey: "key"}, ":8080", "emailjs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyEnv(env(tt.vars))
			if cfg.Server.Addr != tt.addr || cfg.Contact.Provider != tt.provider {
				t.Errorf("addr = %q provider = %q", cfg.Server.Addr, cfg.Contact.Provider)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"page", func(c *Config) { c.Export.Page = "tabloid" }, "export"},
		{"margin", func(c *Config) { c.Export.Margin = 200 }, "export"},
		{"scale", func(c *Config) { c.Export.Scale = 0 }, "export.scale"},
		{"width", func(c *Config) { c.Export.CaptureWidth = -1 }, "export.capture_width"},
		{"provider", func(c *Config) { c.Contact.Provider = "smtp" }, "contact.provider"},
		{"emailjs keys", func(c *Config) { c.Contact.Provider = "emailjs" }, "contact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Validate() error = %v, want INVALID_CONFIG", err)
			}
			if _, ok := errors.Fields(err)[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", errors.Fields(err), tt.field)
			}
		})
	}
}
