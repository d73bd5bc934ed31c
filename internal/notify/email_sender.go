package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"
)

// SMTPConfig names the mail server and the report recipients. To may list
// several addresses separated by commas.
type SMTPConfig struct {
	Server string
	Port   int
	User   string
	Pass   string
	From   string
	To     string
}

// SMTPSender mails rendered reports through one SMTP server.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(m ...*gomail.Message) error
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	dialer := gomail.NewDialer(cfg.Server, cfg.Port, cfg.User, cfg.Pass)
	dialer.Timeout = 30 * time.Second
	return &SMTPSender{cfg: cfg, send: dialer.DialAndSend}
}

func recipients(to string) []string {
	var out []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func (s *SMTPSender) compose(msg *RenderedMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", recipients(s.cfg.To)...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

func (s *SMTPSender) Send(msg *RenderedMessage) error {
	to := recipients(s.cfg.To)
	if len(to) == 0 {
		return fmt.Errorf("no recipients in %q", s.cfg.To)
	}
	if err := s.send(s.compose(msg)); err != nil {
		return fmt.Errorf("smtp %s:%d: %w", s.cfg.Server, s.cfg.Port, err)
	}
	slog.Debug("report mailed", "server", s.cfg.Server, "recipients", len(to))
	return nil
}
