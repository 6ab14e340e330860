// Package res loads images and stylesheets referenced by rendered pages:
// data URLs, files from embedded or on-disk asset trees, and remote URLs.
package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is an image resource
	ResourceTypeImage
	// ResourceTypeCSS is a CSS resource
	ResourceTypeCSS
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// ErrNotFound is returned when no source holds the requested resource
var ErrNotFound = errors.New("resource not found")

// maxRemoteSize caps the body read from a remote resource
const maxRemoteSize = 16 << 20

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader resolves resource references. Sources are tried in the order
// they were added. Results are cached by reference.
type Loader struct {
	// BaseURL resolves relative references when it is an http(s) URL
	BaseURL string

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	sources []fs.FS
	client  *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(dir string) {
	l.sources = append(l.sources, os.DirFS(dir))
}

// AddFS adds a file system, such as embedded site assets, to search
func (l *Loader) AddFS(fsys fs.FS) {
	l.sources = append(l.sources, fsys)
}

// SetHTTPClient replaces the client used for remote resources
func (l *Loader) SetHTTPClient(c *http.Client) {
	if c != nil {
		l.client = c
	}
}

// Load loads a resource from a data URL, a local path or a remote URL
func (l *Loader) Load(ctx context.Context, ref string) (*Resource, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty resource reference: %w", ErrNotFound)
	}

	l.cacheLock.RLock()
	if res, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var res *Resource
	var err error
	switch {
	case strings.HasPrefix(ref, "data:"):
		res, err = parseDataURL(ref)
	case isRemote(ref):
		res, err = l.loadRemote(ctx, ref)
	case isRemote(l.BaseURL):
		var resolved string
		resolved, err = l.resolveURL(ref)
		if err == nil {
			res, err = l.loadRemote(ctx, resolved)
		}
	default:
		res, err = l.loadLocal(ref)
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[ref] = res
	l.cacheLock.Unlock()

	return res, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// parseDataURL parses a data URL (RFC 2397) such as
// data:image/png;base64,<base64> or data:image/svg+xml,%3Csvg...
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mime := "text/plain"
	isBase64 := false
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mime = strings.ToLower(comps[0])
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		var err error
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{
		URL:      u,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime, ""),
	}, nil
}

// resolveURL resolves a reference against an http(s) base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("failed to parse resource URL: %w", err)
	}
	return base.ResolveReference(rel).String(), nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(ctx context.Context, urlStr string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error fetching %s: %s", urlStr, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", urlStr, err)
	}

	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	if mime == "" {
		mime = determineMimeType(urlStr)
	}
	return &Resource{
		URL:      urlStr,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime, urlStr),
	}, nil
}

// loadLocal loads a resource from the registered sources, falling back to
// the path as given on disk
func (l *Loader) loadLocal(ref string) (*Resource, error) {
	name := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(ref)), "/")
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, name)
		if err == nil {
			return localResource(ref, data), nil
		}
	}

	if filepath.IsAbs(ref) {
		data, err := os.ReadFile(ref)
		if err == nil {
			return localResource(ref, data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", ref, err)
		}
	}
	return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
}

func localResource(ref string, data []byte) *Resource {
	mime := determineMimeType(ref)
	return &Resource{
		URL:      ref,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime, ref),
	}
}

// determineMimeType determines the MIME type of a file
func determineMimeType(p string) string {
	ext := strings.ToLower(filepath.Ext(p))

	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}

// determineResourceType determines the type of a resource
func determineResourceType(mimeType, p string) ResourceType {
	if strings.HasPrefix(mimeType, "image/") {
		return ResourceTypeImage
	}
	if mimeType == "text/css" {
		return ResourceTypeCSS
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".tiff", ".tif", ".bmp":
		return ResourceTypeImage
	case ".css":
		return ResourceTypeCSS
	}

	return ResourceTypeOther
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ctx context.Context, ref string) (*Resource, error) {
	res, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeImage {
		return nil, fmt.Errorf("resource is not an image: %s", ref)
	}
	return res, nil
}

// LoadCSS loads a CSS resource
func (l *Loader) LoadCSS(ctx context.Context, ref string) (*Resource, error) {
	res, err := l.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if res.Type != ResourceTypeCSS {
		return nil, fmt.Errorf("resource is not CSS: %s", ref)
	}
	return res, nil
}

// IsSVG reports whether the resource holds SVG markup
func (r *Resource) IsSVG() bool {
	return r.MimeType == "image/svg+xml" || bytes.HasPrefix(bytes.TrimSpace(r.Data), []byte("<svg"))
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}
