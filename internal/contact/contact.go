// Package contact validates messages from the portfolio contact form and
// delivers them.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/pkg/errors"
)

// DefaultEndpoint is the EmailJS send API
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmptyMessage replaces a blank message body
const EmptyMessage = "No message provided"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Message is one contact form submission
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Normalize trims every field, lowercases the email and fills in an empty
// message
func (m Message) Normalize() Message {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Message = strings.TrimSpace(m.Message)
	if m.Message == "" {
		m.Message = EmptyMessage
	}
	return m
}

// Validate returns an INVALID_INPUT error carrying per-field messages
func (m Message) Validate() error {
	fields := errors.FieldErrors{}

	name := strings.TrimSpace(m.Name)
	switch {
	case name == "":
		fields["name"] = "Name is required"
	case utf8.RuneCountInString(name) < 2:
		fields["name"] = "Name must be at least 2 characters"
	}

	email := strings.TrimSpace(m.Email)
	switch {
	case email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(strings.ToLower(email)):
		fields["email"] = "Please enter a valid email"
	}

	return errors.Validation(fields)
}

// Sender delivers a validated message
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// EmailJS sends messages through the EmailJS REST API
type EmailJS struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	Endpoint   string

	http *http.Client
}

// NewEmailJS creates an EmailJS sender
func NewEmailJS(serviceID, templateID, publicKey string) *EmailJS {
	return &EmailJS{
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		Endpoint:   DefaultEndpoint,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts m to EmailJS. Any status other than 200 is a SEND_FAILED
// error.
func (c *EmailJS) Send(ctx context.Context, m Message) error {
	if c.ServiceID == "" || c.TemplateID == "" || c.PublicKey == "" {
		return errors.New(errors.ErrCodeSendFailed, "email delivery is not configured")
	}
	m = m.Normalize()

	body, err := json.Marshal(emailJSRequest{
		ServiceID:  c.ServiceID,
		TemplateID: c.TemplateID,
		UserID:     c.PublicKey,
		TemplateParams: map[string]string{
			"from_name":  m.Name,
			"from_email": m.Email,
			"message":    m.Message,
		},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeSendFailed, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSendFailed, err, "failed to reach email service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Wrap(errors.ErrCodeSendFailed,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))),
			"email service rejected the message")
	}
	return nil
}

// LogSender logs messages instead of sending them
type LogSender struct {
	Logger *log.Logger
}

// Send logs m at info level
func (s LogSender) Send(ctx context.Context, m Message) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	m = m.Normalize()
	logger.Info("contact message", "name", m.Name, "email", m.Email, "length", utf8.RuneCountInString(m.Message))
	return nil
}
