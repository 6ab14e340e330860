package templates

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/gompdf/folio/internal/profile"
	"github.com/yuin/goldmark"
)

var md = goldmark.New()

func funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":  Markdown,
		"icon":      icon,
		"host":      host,
		"join":      strings.Join,
		"skillList": skillList,
	}
}

// Markdown converts Markdown to HTML. Raw HTML in the source is dropped.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// host shortens a profile link for print, e.g.
// "https://github.com/alex" becomes "github.com/alex"
func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.") + strings.TrimSuffix(u.Path, "/")
}

func skillList(items []profile.SkillItem) string {
	names := make([]string, len(items))
	for i, s := range items {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

var iconPaths = map[string]string{
	"email":    `<rect x="2" y="5" width="20" height="14" rx="2" fill="none" stroke="%[1]s" stroke-width="2"/><path d="M3 6 L12 13 L21 6" fill="none" stroke="%[1]s" stroke-width="2"/>`,
	"phone":    `<rect x="6" y="2" width="12" height="20" rx="2" fill="none" stroke="%[1]s" stroke-width="2"/><rect x="10" y="17" width="4" height="2" fill="%[1]s"/>`,
	"location": `<path d="M12 2 C7.6 2 4 5.6 4 10 C4 15.5 12 22 12 22 C12 22 20 15.5 20 10 C20 5.6 16.4 2 12 2 Z" fill="%[1]s"/><circle cx="12" cy="10" r="3" fill="#ffffff"/>`,
}

// icon returns a small SVG contact icon as a data URL
func icon(name, color string) template.URL {
	body, ok := iconPaths[name]
	if !ok {
		return ""
	}
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24">` +
		fmt.Sprintf(body, color) + `</svg>`
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)))
}
