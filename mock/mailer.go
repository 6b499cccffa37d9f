// Package mock provides shared test doubles for the condreg test suites.
package mock

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Mailer is the capability interface used across the test suites: an
// abstract email sender with interchangeable provider backends.
type Mailer interface {
	Send(to, subject, body string) error
	Provider() string
}

// Message records one delivered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// SMTPMailer is the plain SMTP provider double.
type SMTPMailer struct {
	Host string

	mu   sync.Mutex
	sent []Message
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (m *SMTPMailer) Provider() string {
	return "smtp"
}

// Sent returns a copy of the delivered messages.
func (m *SMTPMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// SendGridMailer is the hosted-API provider double.
type SendGridMailer struct {
	APIKey string
}

func (m *SendGridMailer) Send(to, subject, body string) error {
	if m.APIKey == "" {
		return errors.New("sendgrid: missing api key")
	}
	return nil
}

func (m *SendGridMailer) Provider() string {
	return "sendgrid"
}

// CountingFactory wraps a fixed instance and counts factory invocations,
// for asserting singleton-per-key semantics.
type CountingFactory struct {
	calls    atomic.Int64
	instance any
}

func NewCountingFactory(instance any) *CountingFactory {
	return &CountingFactory{instance: instance}
}

// New is the condreg.Factory to register.
func (f *CountingFactory) New() (any, error) {
	f.calls.Add(1)
	return f.instance, nil
}

// Calls reports how many times New ran.
func (f *CountingFactory) Calls() int64 {
	return f.calls.Load()
}

// FailingFactory returns a factory that fails with the given message until
// after the first failTimes invocations, then succeeds with instance.
func FailingFactory(msg string, failTimes int64, instance any) func() (any, error) {
	var calls atomic.Int64
	return func() (any, error) {
		if calls.Add(1) <= failTimes {
			return nil, errors.New(msg)
		}
		return instance, nil
	}
}
