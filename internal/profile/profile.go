// Package profile holds the portfolio owner's record: personal details,
// skills, services, projects, experience and education.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gompdf/folio/pkg/errors"
)

//go:embed default.toml
var defaultProfile []byte

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Profile is the complete portfolio record
type Profile struct {
	Personal   Personal        `toml:"personal"`
	Skills     []SkillCategory `toml:"skills"`
	Services   []Service       `toml:"services"`
	Projects   []Project       `toml:"projects"`
	Experience []Experience    `toml:"experience"`
	Education  []Education     `toml:"education"`
	Stats      Stats           `toml:"stats"`
}

// Personal is the header block of a profile
type Personal struct {
	Name         string `toml:"name"`
	Title        string `toml:"title"`
	Tagline      string `toml:"tagline"`
	Email        string `toml:"email"`
	Phone        string `toml:"phone"`
	Location     string `toml:"location"`
	ProfileImage string `toml:"profile_image"`
	// Bio is Markdown
	Bio    string `toml:"bio"`
	Resume string `toml:"resume"`
	// Social maps a platform name (github, linkedin, ...) to a URL
	Social map[string]string `toml:"social"`
}

// SkillCategory groups skills under a heading
type SkillCategory struct {
	Category string      `toml:"category"`
	Icon     string      `toml:"icon"`
	Items    []SkillItem `toml:"items"`
}

// SkillItem is one skill with a proficiency level from 0 to 100
type SkillItem struct {
	Name  string `toml:"name"`
	Level int    `toml:"level"`
}

type Service struct {
	Icon        string   `toml:"icon"`
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Features    []string `toml:"features"`
}

type Project struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Tech        []string `toml:"tech"`
	Image       string   `toml:"image"`
	Demo        string   `toml:"demo"`
	GitHub      string   `toml:"github"`
}

type Experience struct {
	Title   string `toml:"title"`
	Company string `toml:"company"`
	Period  string `toml:"period"`
	// Description is Markdown
	Description  string   `toml:"description"`
	Achievements []string `toml:"achievements"`
}

type Education struct {
	Degree       string   `toml:"degree"`
	Institution  string   `toml:"institution"`
	Period       string   `toml:"period"`
	Location     string   `toml:"location"`
	Score        string   `toml:"score"`
	Achievements []string `toml:"achievements"`
}

// Stats are the aggregate counters shown on the portfolio page
type Stats struct {
	Technologies   int     `toml:"technologies"`
	Experience     float64 `toml:"experience"`
	Projects       int     `toml:"projects"`
	Certifications int     `toml:"certifications"`
}

// SocialLink is one entry of Personal.Social
type SocialLink struct {
	Platform string
	URL      string
}

// Default returns the embedded sample profile
func Default() *Profile {
	p, err := Parse(defaultProfile)
	if err != nil {
		panic(fmt.Sprintf("embedded profile is invalid: %v", err))
	}
	return p
}

// Load reads and validates a TOML profile file
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "failed to read profile %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML profile
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "failed to parse profile")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks required fields and value ranges
func (p *Profile) Validate() error {
	fields := errors.FieldErrors{}
	if strings.TrimSpace(p.Personal.Name) == "" {
		fields["personal.name"] = "name is required"
	}
	if email := strings.TrimSpace(p.Personal.Email); email != "" && !emailPattern.MatchString(email) {
		fields["personal.email"] = fmt.Sprintf("%q is not a valid email address", email)
	}
	for i, c := range p.Skills {
		for j, s := range c.Items {
			if s.Level < 0 || s.Level > 100 {
				fields[fmt.Sprintf("skills[%d].items[%d].level", i, j)] = fmt.Sprintf("level %d of %q must be between 0 and 100", s.Level, s.Name)
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidProfile, fields, "invalid profile")
}

// ResumeFileName derives the download name, e.g. "Alex_Morgan_Resume.pdf"
func (p *Profile) ResumeFileName() string {
	parts := strings.Fields(p.Personal.Name)
	if len(parts) == 0 {
		return "Resume.pdf"
	}
	return strings.Join(parts, "_") + "_Resume.pdf"
}

// SocialLinks returns the non-empty social links sorted by platform
func (p *Profile) SocialLinks() []SocialLink {
	links := make([]SocialLink, 0, len(p.Personal.Social))
	for platform, url := range p.Personal.Social {
		if strings.TrimSpace(url) == "" {
			continue
		}
		links = append(links, SocialLink{Platform: platform, URL: url})
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].Platform < links[j].Platform
	})
	return links
}

// SkillNames flattens every skill name in category order
func (p *Profile) SkillNames() []string {
	var names []string
	for _, c := range p.Skills {
		for _, s := range c.Items {
			names = append(names, s.Name)
		}
	}
	return names
}
