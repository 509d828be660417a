package auth

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
)

// DefaultInvitationTemplate renders the invitation mail body. Values are
// escaped by pongo2.
const DefaultInvitationTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{ subject }}</title></head>
<body>
<h1>{{ title }}</h1>
<p>{{ part1 }}</p>
<p>{{ part2 }}</p>
<p><a href="{{ link_url }}">{{ link_text }}</a></p>
<p>{{ part3 }}</p>
<p>Regards,<br>{{ from_name }}</p>
<hr>
<p><small>{{ app_name }}{% if copyright %} - {{ copyright }}{% endif %}</small></p>
</body>
</html>
`

// MailComposer renders the recovery and invitation messages.
type MailComposer struct {
	cfg        Config
	texts      TextProvider
	invitation *pongo2.Template
	clock      Clock
}

// NewMailComposer compiles tpl, or DefaultInvitationTemplate when tpl is
// empty.
func NewMailComposer(cfg Config, texts TextProvider, tpl string) (*MailComposer, error) {
	if strings.TrimSpace(tpl) == "" {
		tpl = DefaultInvitationTemplate
	}
	compiled, err := pongo2.FromString(tpl)
	if err != nil {
		return nil, unexpected(err, "compile invitation template")
	}
	return &MailComposer{
		cfg:        cfg,
		texts:      normalizeTextProvider(texts),
		invitation: compiled,
		clock:      time.Now,
	}, nil
}

// WithClock replaces the time source used for the copyright year
func (m *MailComposer) WithClock(c Clock) *MailComposer {
	m.clock = normalizeClock(c)
	return m
}

// ResetLink is the absolute password reset verification URL
func (m *MailComposer) ResetLink(name, token string) string {
	return joinURL(m.cfg.AppURL, m.cfg.ResetVerifyURL, url.PathEscape(name), url.PathEscape(token))
}

// InvitationLink is the absolute invitation verification URL
func (m *MailComposer) InvitationLink(userID int64, token string) string {
	return joinURL(m.cfg.AppURL, m.cfg.InviteVerifyURL, strconv.FormatInt(userID, 10), url.PathEscape(token))
}

// PasswordReset builds the plain text reset mail.
func (m *MailComposer) PasswordReset(to, name, token string) Mail {
	return Mail{
		To:       to,
		From:     m.cfg.ResetMailFromEmail,
		FromName: m.cfg.ResetMailFromName,
		Subject:  m.cfg.ResetMailSubject,
		Body:     m.cfg.ResetMailContent + " " + m.ResetLink(name, token),
	}
}

// Invitation builds the HTML invitation mail.
func (m *MailComposer) Invitation(to string, userID int64, token string) (Mail, error) {
	subject := fmt.Sprintf(m.texts.Text(TextInvitationSubject), m.cfg.AppName)
	copyright := ""
	if m.cfg.AppCopyright != "" {
		copyright = fmt.Sprintf("Copyright %d %s", m.clock().Year(), m.cfg.AppCopyright)
	}

	body, err := m.invitation.Execute(pongo2.Context{
		"subject":   subject,
		"title":     m.texts.Text(TextInvitationTitle),
		"part1":     fmt.Sprintf(m.texts.Text(TextInvitationPart1), m.cfg.AppName+" on "+m.cfg.AppURL),
		"part2":     m.texts.Text(TextInvitationPart2),
		"part3":     m.texts.Text(TextInvitationPart3),
		"link_url":  m.InvitationLink(userID, token),
		"link_text": m.texts.Text(TextInvitationLinkText),
		"from_name": m.cfg.InviteMailFromName,
		"app_name":  m.cfg.AppName,
		"copyright": copyright,
	})
	if err != nil {
		return Mail{}, unexpected(err, "render invitation mail")
	}

	return Mail{
		To:       to,
		From:     m.cfg.InviteMailFromEmail,
		FromName: m.cfg.InviteMailFromName,
		Subject:  subject,
		Body:     body,
		HTML:     true,
	}, nil
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}

func defaultComposer(cfg Config, texts TextProvider) *MailComposer {
	m, err := NewMailComposer(cfg, texts, "")
	if err != nil {
		panic(err)
	}
	return m
}
