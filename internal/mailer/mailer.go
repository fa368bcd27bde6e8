// Package mailer delivers contact messages through the EmailJS REST API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// DefaultEndpoint is the EmailJS send API.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// RecipientName is the fixed to_name template parameter.
const RecipientName = "TaskTide Team"

// ErrNotConfigured is returned when any EmailJS credential is missing.
var ErrNotConfigured = errors.New("email configuration is incomplete: set service id, template id and public key")

// Config holds EmailJS credentials.
type Config struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Status reports which credentials are present.
type Status struct {
	HasServiceID      bool `json:"hasServiceId"`
	HasTemplateID     bool `json:"hasTemplateId"`
	HasPublicKey      bool `json:"hasPublicKey"`
	IsFullyConfigured bool `json:"isFullyConfigured"`
}

// Status returns the configuration status.
func (c Config) Status() Status {
	s := Status{
		HasServiceID:  strings.TrimSpace(c.ServiceID) != "",
		HasTemplateID: strings.TrimSpace(c.TemplateID) != "",
		HasPublicKey:  strings.TrimSpace(c.PublicKey) != "",
	}
	s.IsFullyConfigured = s.HasServiceID && s.HasTemplateID && s.HasPublicKey
	return s
}

// Configured reports whether every credential is present.
func (c Config) Configured() bool {
	return c.Status().IsFullyConfigured
}

// Message is one contact message.
type Message struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	ToName    string `json:"to_name"`
	ReplyTo   string `json:"reply_to"`
}

// Option customizes a Mailer.
type Option func(*Mailer)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(m *Mailer) {
		m.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Mailer) {
		if client != nil {
			m.http = client
		}
	}
}

// WithLogger sets the logger used for send failures.
func WithLogger(logger *charmLog.Logger) Option {
	return func(m *Mailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Mailer sends messages with a fixed configuration.
type Mailer struct {
	cfg      Config
	endpoint string
	http     *http.Client
	logger   *charmLog.Logger
}

// New constructs a new value for this package.
func New(cfg Config, opts ...Option) *Mailer {
	m := &Mailer{
		cfg:      cfg,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   charmLog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configured reports whether the mailer has every credential.
func (m *Mailer) Configured() bool {
	return m.cfg.Configured()
}

// Status returns the configuration status.
func (m *Mailer) Status() Status {
	return m.cfg.Status()
}

// Send posts msg to EmailJS.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Configured() {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(sendRequest{
		ServiceID:  m.cfg.ServiceID,
		TemplateID: m.cfg.TemplateID,
		UserID:     m.cfg.PublicKey,
		TemplateParams: templateParams{
			FromName:  msg.Name,
			FromEmail: msg.Email,
			Subject:   msg.Subject,
			Message:   msg.Message,
			ToName:    RecipientName,
			ReplyTo:   msg.Email,
		},
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		m.logger.Error("email send failed", "err", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		m.logger.Error("email send rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return fmt.Errorf("failed to send email: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	m.logger.Debug("email sent", "subject", msg.Subject)
	return nil
}
