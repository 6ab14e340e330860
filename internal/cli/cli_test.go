package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/config"
	"github.com/gompdf/folio/internal/contact"
	"github.com/gompdf/folio/pkg/errors"
)

// run executes the root command with args and returns its output
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetVersion(t *testing.T) {
	defer SetVersion(version, commit, date)

	SetVersion("1.0.0", "abc123", "2026-01-01")
	if version != "1.0.0" || commit != "abc123" || date != "2026-01-01" {
		t.Errorf("version = %q %q %q", version, commit, date)
	}
}

func TestTemplatesCmd(t *testing.T) {
	out, err := run(t, "templates")
	if err != nil {
		t.Fatalf("templates error = %v", err)
	}
	for _, want := range []string{"Resume templates", "ats", "sidebar", "clean"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportAndInspect(t *testing.T) {
	if testing.Short() {
		t.Skip("captures a full resume")
	}
	dir := t.TempDir()

	out, err := run(t, "export", "--out", dir, "--scale", "1", "--template", "clean")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	path := filepath.Join(dir, "Alex_Morgan_Resume.pdf")
	if !strings.Contains(out, path) {
		t.Errorf("export output does not name %s:\n%s", path, out)
	}

	out, err = run(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"pages", "210.0 x 297.0 mm"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown page", []string{"export", "--page", "tabloid", "--out", os.TempDir()}, errors.ErrCodeInvalidConfig},
		{"negative scale", []string{"export", "--scale", "-1", "--out", os.TempDir()}, errors.ErrCodeInvalidConfig},
		{"unknown template", []string{"export", "--template", "nope", "--scale", "1", "--out", os.TempDir()}, errors.ErrCodeNoTemplate},
		{"missing profile", []string{"export", "--profile", "does-not-exist.toml", "--out", os.TempDir()}, errors.ErrCodeInvalidProfile},
		{"missing pdf", []string{"inspect", "does-not-exist.pdf"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield the default logger")
	}
	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("logger not carried by context")
	}
}

func TestNewSender(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if _, ok := newSender(config.Contact{Provider: "log"}, logger).(contact.LogSender); !ok {
		t.Error("log provider should log messages")
	}
	s, ok := newSender(config.Contact{Provider: "emailjs", ServiceID: "s", TemplateID: "t", PublicKey: "k", Endpoint: "http://localhost/send"}, logger).(*contact.EmailJS)
	if !ok || s.Endpoint != "http://localhost/send" || s.ServiceID != "s" {
		t.Errorf("emailjs sender = %+v", s)
	}
}

func TestNewSite(t *testing.T) {
	if _, err := newSite(config.Default(), newLogger(&bytes.Buffer{}, log.InfoLevel)); err != nil {
		t.Fatalf("newSite() error = %v", err)
	}
	cfg := config.Default()
	cfg.Profile.Path = "does-not-exist.toml"
	if _, err := newSite(cfg, log.Default()); !errors.Is(err, errors.ErrCodeInvalidProfile) {
		t.Errorf("error = %v, want INVALID_PROFILE", err)
	}
}
