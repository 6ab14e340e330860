package site

import (
	"bytes"
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gompdf/folio/internal/contact"
	"github.com/gompdf/folio/internal/profile"
	"github.com/gompdf/folio/internal/templates"
	"github.com/gompdf/folio/pkg/errors"
)

// maxContactBody bounds the contact form payload
const maxContactBody = 64 << 10

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type pageData struct {
	*profile.Profile
	Links     []profile.SocialLink
	Year      int
	Templates []templates.Template
	Selected  templates.Template
}

func (s *Server) data() pageData {
	return pageData{
		Profile: s.profile,
		Links:   s.profile.SocialLinks(),
		Year:    s.now().Year(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, s.index, s.data())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"export_in_progress": s.exporter != nil && s.exporter.InProgress(),
	})
}

func (s *Server) handleBuilder(w http.ResponseWriter, r *http.Request) {
	d := s.data()
	d.Templates = s.templates.List()

	name := r.URL.Query().Get("template")
	if name == "" {
		name = s.opts.DefaultTemplate
	}
	selected, ok := s.templates.Lookup(name)
	if !ok && len(d.Templates) > 0 {
		selected = d.Templates[0]
	}
	d.Selected = selected
	s.renderPage(w, r, s.resume, d)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	out, err := s.templates.Render(chi.URLParam(r, "template"), s.profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "template")
	if _, ok := s.templates.Lookup(name); !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNoTemplate, "unknown template %q", name))
		return
	}

	var buf bytes.Buffer
	res, err := s.exporter.Export(r.Context(), s.profile, name, &buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.Write(buf.Bytes())
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var m contact.Message
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed form"))
			return
		}
		m = contact.Message{Name: r.PostFormValue("name"), Email: r.PostFormValue("email"), Message: r.PostFormValue("message")}
	default:
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed JSON body"))
			return
		}
	}

	if err := m.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sender.Send(r.Context(), m.Normalize()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, t *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "failed to render %s", t.Name()))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// statusFor maps error codes to HTTP status codes
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNoTemplate, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeExportInProgress:
		return http.StatusConflict
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidProfile:
		return http.StatusBadRequest
	case errors.ErrCodeSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	body := errorBody{Code: string(code), Message: errors.UserMessage(err), Fields: errors.Fields(err)}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "id", requestIDFrom(r.Context()), "err", err)
		if code == errors.ErrCodeInternal {
			body.Message = "internal error"
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
