// Package mail renders account emails and hands them to a transport.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.md"))

// Message kinds.
const (
	KindWelcome       = "welcome"
	KindPasswordReset = "password_reset"
)

// Message is a rendered email ready for delivery.
type Message struct {
	Kind    string    `json:"type"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Name    string    `json:"name,omitempty"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
	HTML    string    `json:"html"`
	Link    string    `json:"link,omitempty"`
	Created time.Time `json:"createdAt"`
}

// Transport delivers a rendered message.
type Transport interface {
	Deliver(ctx context.Context, m Message) error
}

// Sender renders account emails and passes them to Transport.
type Sender struct {
	Transport Transport
	From      string
	AppName   string
	ResetTTL  time.Duration
}

func (s *Sender) render(kind, tmpl, subject string, to domain.PublicUser, link string) (Message, error) {
	name := to.Name
	if name == "" {
		name = "there"
	}

	var md bytes.Buffer
	err := templates.ExecuteTemplate(&md, tmpl, map[string]any{
		"AppName": s.AppName,
		"Name":    name,
		"Link":    link,
		"Expiry":  humanDuration(s.ResetTTL),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}

	var html bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &html); err != nil {
		return Message{}, fmt.Errorf("convert %s: %w", kind, err)
	}

	return Message{
		Kind:    kind,
		From:    s.From,
		To:      to.Email,
		Name:    to.Name,
		Subject: subject,
		Text:    md.String(),
		HTML:    html.String(),
		Link:    link,
		Created: time.Now().UTC(),
	}, nil
}

// SendWelcome greets a newly registered user.
func (s *Sender) SendWelcome(ctx context.Context, to domain.PublicUser) error {
	m, err := s.render(KindWelcome, "welcome.md", "Welcome to "+s.AppName, to, "")
	if err != nil {
		return err
	}
	return s.Transport.Deliver(ctx, m)
}

// SendPasswordReset mails the reset link.
func (s *Sender) SendPasswordReset(ctx context.Context, to domain.PublicUser, resetURL string) error {
	m, err := s.render(KindPasswordReset, "password_reset.md", "Password Reset Request", to, resetURL)
	if err != nil {
		return err
	}
	return s.Transport.Deliver(ctx, m)
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0, d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
