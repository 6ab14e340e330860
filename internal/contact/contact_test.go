package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gompdf/folio/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		msg    Message
		fields map[string]string
	}{
		{"valid", Message{Name: "Jo", Email: "jo@example.com"}, nil},
		{"uppercase email", Message{Name: "Jo", Email: " JO@Example.COM "}, nil},
		{"missing name", Message{Email: "jo@example.com"}, map[string]string{"name": "Name is required"}},
		{"short name", Message{Name: " J ", Email: "jo@example.com"}, map[string]string{"name": "Name must be at least 2 characters"}},
		{"multibyte name", Message{Name: "李明", Email: "li@example.cn"}, nil},
		{"missing email", Message{Name: "Jo", Email: "  "}, map[string]string{"email": "Email is required"}},
		{"bad email", Message{Name: "Jo", Email: "jo@example"}, map[string]string{"email": "Please enter a valid email"}},
		{"space in email", Message{Name: "Jo", Email: "j o@example.com"}, map[string]string{"email": "Please enter a valid email"}},
		{"both", Message{}, map[string]string{"name": "Name is required", "email": "Email is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("Validate() error = %v, want INVALID_INPUT", err)
			}
			got := errors.Fields(err)
			if len(got) != len(tt.fields) {
				t.Fatalf("fields = %v, want %v", got, tt.fields)
			}
			for k, v := range tt.fields {
				if got[k] != v {
					t.Errorf("field %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	m := Message{Name: "  Jo Lee ", Email: " Jo@Example.com", Message: "  "}.Normalize()
	want := Message{Name: "Jo Lee", Email: "jo@example.com", Message: EmptyMessage}
	if m != want {
		t.Errorf("Normalize() = %+v, want %+v", m, want)
	}
}

func TestEmailJSSend(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("request = %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := NewEmailJS("svc", "tpl", "key")
	c.Endpoint = srv.URL
	if err := c.Send(context.Background(), Message{Name: " Jo ", Email: "JO@x.io"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.ServiceID != "svc" || got.TemplateID != "tpl" || got.UserID != "key" {
		t.Errorf("ids = %+v", got)
	}
	params := got.TemplateParams
	if params["from_name"] != "Jo" || params["from_email"] != "jo@x.io" || params["message"] != EmptyMessage {
		t.Errorf("template params = %v", params)
	}
}

func TestEmailJSFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The user ID is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	rejected := NewEmailJS("svc", "tpl", "bad")
	rejected.Endpoint = srv.URL

	tests := []struct {
		name   string
		sender *EmailJS
	}{
		{"rejected", rejected},
		{"unconfigured", NewEmailJS("", "", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sender.Send(context.Background(), Message{Name: "Jo", Email: "jo@x.io"})
			if !errors.Is(err, errors.ErrCodeSendFailed) {
				t.Errorf("Send() error = %v, want SEND_FAILED", err)
			}
		})
	}
}

func TestLogSender(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), Message{Name: "Jo", Email: "jo@x.io"}); err != nil {
		t.Errorf("Send() error = %v", err)
	}
}
