// Package email implements the notification component: a pluggable
// Transport behind a thin component.Component adapter, with an SMTP-shaped
// default implementation and a deterministic mock transport for tests and
// for exercising log_and_continue (spec.md §6, SPEC_FULL.md §6).
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"greenrun/internal/component"
	"greenrun/internal/dict"
	"greenrun/internal/textutil"
)

const ComponentType = "email"

// Message is one outbound email, already placeholder-resolved.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Transport sends one resolved Message, returning an error the caller
// wraps into a CONFIG_ERROR failure.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport sends mail through net/smtp.SendMail against a configured
// relay. It is the production default.
type SMTPTransport struct {
	Addr     string
	From     string
	Auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPTransport builds a transport against addr (host:port), sending as
// from, authenticated with auth (nil for an open relay).
func NewSMTPTransport(addr, from string, auth smtp.Auth) *SMTPTransport {
	return &SMTPTransport{Addr: addr, From: from, Auth: auth, sendMail: smtp.SendMail}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	body := fmt.Sprintf("Subject: %s\r\n\r\n%s", msg.Subject, msg.Body)
	send := t.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	return send(t.Addr, t.Auth, t.From, msg.To, []byte(body))
}

// MockTransport is a deterministic, in-memory transport: it records every
// message it was asked to send and optionally always fails, for tests and
// for the documented log_and_continue scenario (spec.md §8 scenario 5).
type MockTransport struct {
	AlwaysFail bool
	Sent       []Message
}

func (t *MockTransport) Send(ctx context.Context, msg Message) error {
	if t.AlwaysFail {
		return fmt.Errorf("mock transport configured to always fail")
	}
	t.Sent = append(t.Sent, msg)
	return nil
}

// Config is email's decoded component configuration.
type Config struct {
	Transport string   `json:"transport,omitempty"` // "smtp" (default) | "mock"
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	SMTPAddr  string   `json:"smtp_addr,omitempty"`
	From      string   `json:"from,omitempty"`
}

// Sender is the component.Component adapter. transport, if non-nil,
// overrides Config.Transport's selection (tests set it to a *MockTransport);
// when it is nil, Config.Transport selects the transport.
type Sender struct {
	transport Transport
}

// New constructs a Sender that builds its transport from config at
// execution time (the production registry entry).
func New() component.Component { return &Sender{} }

// NewWithTransport constructs a Sender bound to a fixed transport,
// ignoring Config.Transport. Used by tests.
func NewWithTransport(t Transport) component.Component { return &Sender{transport: t} }

func (s *Sender) ComponentType() string { return ComponentType }

func (s *Sender) Execute(ctx context.Context, cfg component.Configuration, data *dict.Dict) (component.Result, error) {
	start := time.Now()
	var conf Config
	if err := component.DecodeBlob(cfg.ConfigBlob, &conf); err != nil {
		return fail(start, err.Error()), nil
	}
	if len(conf.To) == 0 || conf.Subject == "" {
		return fail(start, "\"to\" and \"subject\" are required"), nil
	}

	snapshot := data.Snapshot()
	msg := Message{
		To:      conf.To,
		Subject: textutil.ResolvePlaceholders(conf.Subject, snapshot),
		Body:    textutil.ResolvePlaceholders(conf.Body, snapshot),
	}

	transport := s.transport
	if transport == nil {
		switch conf.Transport {
		case "mock":
			transport = &MockTransport{}
		default:
			transport = NewSMTPTransport(conf.SMTPAddr, conf.From, nil)
		}
	}

	if err := transport.Send(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return component.Result{}, ctx.Err()
		}
		return fail(start, err.Error()), nil
	}

	return component.Result{Status: component.StatusSuccess, DurationMs: time.Since(start).Milliseconds()}, nil
}

func fail(start time.Time, message string) component.Result {
	return component.Result{
		Status:     component.StatusFailure,
		Err:        &component.Error{Code: "CONFIG_ERROR", Message: message},
		DurationMs: time.Since(start).Milliseconds(),
	}
}
