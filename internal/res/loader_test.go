package res

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func TestLoadDataURL(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		wantMime string
		wantData string
		wantType ResourceType
	}{
		{"base64 png", "data:image/png;base64,aGVsbG8=", "image/png", "hello", ResourceTypeImage},
		{"escaped svg", "data:image/svg+xml,%3Csvg%3E%3C/svg%3E", "image/svg+xml", "<svg></svg>", ResourceTypeImage},
		{"default mime", "data:,plain", "text/plain", "plain", ResourceTypeOther},
	}
	l := NewLoader("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := l.Load(context.Background(), tt.ref)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if r.MimeType != tt.wantMime || string(r.Data) != tt.wantData || r.Type != tt.wantType {
				t.Errorf("Load() = %q %q %v", r.MimeType, r.Data, r.Type)
			}
		})
	}

	if _, err := l.Load(context.Background(), "data:image/png;base64"); err == nil {
		t.Error("expected error for data URL without payload")
	}
}

func TestLoadFromFS(t *testing.T) {
	l := NewLoader("")
	l.AddFS(fstest.MapFS{
		"img/avatar.svg": {Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)},
	})

	r, err := l.LoadImage(context.Background(), "/img/avatar.svg")
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if !r.IsSVG() {
		t.Error("expected an SVG resource")
	}

	if _, err := l.Load(context.Background(), "missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing resource error = %v, want ErrNotFound", err)
	}
	if _, err := l.LoadCSS(context.Background(), "/img/avatar.svg"); err == nil {
		t.Error("LoadCSS should reject an image")
	}
}

func TestLoadRemoteCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write([]byte("body { color: red; }"))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/site/")
	for i := 0; i < 2; i++ {
		r, err := l.LoadCSS(context.Background(), "theme.css")
		if err != nil {
			t.Fatalf("LoadCSS() error = %v", err)
		}
		if r.URL != srv.URL+"/site/theme.css" {
			t.Errorf("URL = %q", r.URL)
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}
