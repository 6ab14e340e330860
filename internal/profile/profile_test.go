package profile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gompdf/folio/pkg/errors"
)

func TestDefault(t *testing.T) {
	p := Default()
	if p.Personal.Name != "Alex Morgan" {
		t.Errorf("name = %q", p.Personal.Name)
	}
	if len(p.Skills) != 4 || len(p.Services) != 6 || len(p.Projects) != 3 || len(p.Experience) != 3 {
		t.Errorf("sections = %d skills, %d services, %d projects, %d jobs",
			len(p.Skills), len(p.Services), len(p.Projects), len(p.Experience))
	}
	if p.Stats.Experience != 3.1 || p.Stats.Technologies != 15 {
		t.Errorf("stats = %+v", p.Stats)
	}
	if got := p.SkillNames(); len(got) != 23 || got[0] != "React.js" {
		t.Errorf("SkillNames() = %v", got)
	}
}

func TestResumeFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Alex Morgan", "Alex_Morgan_Resume.pdf"},
		{"  Jo   Ann  Lee ", "Jo_Ann_Lee_Resume.pdf"},
		{"Madonna", "Madonna_Resume.pdf"},
		{"", "Resume.pdf"},
	}
	for _, tt := range tests {
		p := &Profile{Personal: Personal{Name: tt.name}}
		if got := p.ResumeFileName(); got != tt.want {
			t.Errorf("ResumeFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSocialLinks(t *testing.T) {
	p := &Profile{Personal: Personal{Social: map[string]string{
		"medium":   "https://medium.com/@x",
		"github":   "https://github.com/x",
		"linkedin": "",
	}}}
	want := []SocialLink{
		{"github", "https://github.com/x"},
		{"medium", "https://medium.com/@x"},
	}
	if got := p.SocialLinks(); !reflect.DeepEqual(got, want) {
		t.Errorf("SocialLinks() = %v, want %v", got, want)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		fields []string
	}{
		{"valid", "[personal]\nname = \"A B\"\nemail = \"a@b.co\"\n", nil},
		{"missing name", "[personal]\nemail = \"a@b.co\"\n", []string{"personal.name"}},
		{"bad email", "[personal]\nname = \"A\"\nemail = \"a@b\"\n", []string{"personal.email"}},
		{"level out of range", `
[personal]
name = "A"
[[skills]]
category = "Go"
items = [{ name = "Go", level = 101 }, { name = "C", level = -1 }]
`, []string{"skills[0].items[0].level", "skills[0].items[1].level"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidProfile) {
				t.Fatalf("error = %v, want INVALID_PROFILE", err)
			}
			got := errors.Fields(err)
			if len(got) != len(tt.fields) {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
			for _, f := range tt.fields {
				if _, ok := got[f]; !ok {
					t.Errorf("missing field error %q in %v", f, got)
				}
			}
		})
	}

	if _, err := Parse([]byte("personal = [")); !errors.Is(err, errors.ErrCodeInvalidProfile) {
		t.Errorf("syntax error = %v, want INVALID_PROFILE", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.toml")
	if err := os.WriteFile(path, []byte("[personal]\nname = \"Sam Ortiz\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.ResumeFileName() != "Sam_Ortiz_Resume.pdf" {
		t.Errorf("file name = %q", p.ResumeFileName())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidProfile) {
		t.Errorf("missing file error = %v", err)
	}
}
