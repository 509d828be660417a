package mailgun

import (
	"context"
	"fmt"
	"strings"
	"time"

	auth "github.com/goliatone/go-auth-lifecycle"
	goerrors "github.com/goliatone/go-errors"
	mg "github.com/mailgun/mailgun-go/v4"
)

// DefaultTimeout bounds a single send
const DefaultTimeout = 10 * time.Second

type client interface {
	NewMessage(from, subject, text string, to ...string) *mg.Message
	Send(ctx context.Context, m *mg.Message) (string, string, error)
}

// Config holds the Mailgun account settings
type Config struct {
	Domain  string `env:"MAILGUN_DOMAIN"`
	APIKey  string `env:"MAILGUN_API_KEY"`
	APIBase string `env:"MAILGUN_API_BASE"`
	Timeout time.Duration
}

// Mailer delivers auth mails through Mailgun
type Mailer struct {
	client  client
	timeout time.Duration
	logger  auth.Logger
}

var _ auth.Mailer = (*Mailer)(nil)

// New returns a Mailer for the configured domain
func New(cfg Config) *Mailer {
	impl := mg.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		impl.SetAPIBase(cfg.APIBase)
	}
	return newWithClient(impl, cfg.Timeout)
}

func newWithClient(c client, timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Mailer{client: c, timeout: timeout, logger: auth.NewLogrusLogger(nil)}
}

// WithLogger sets the logger
func (m *Mailer) WithLogger(logger auth.Logger) *Mailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// SendMail implements auth.Mailer.
func (m *Mailer) SendMail(ctx context.Context, mail auth.Mail) error {
	text := mail.Body
	if mail.HTML {
		text = ""
	}

	msg := m.client.NewMessage(formatFrom(mail.FromName, mail.From), mail.Subject, text, mail.To)
	if mail.HTML {
		msg.SetHtml(mail.Body)
	}

	c, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, id, err := m.client.Send(c, msg)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "mailgun send failed").
			WithMetadata(map[string]any{"subject": mail.Subject})
	}
	m.logger.Debug("mailgun accepted message %s", id)
	return nil
}

func formatFrom(name, address string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return address
	}
	name = strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(name)
	return fmt.Sprintf("%q <%s>", name, address)
}
