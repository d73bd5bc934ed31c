/*
Package notify e-mails the today-mode identifier list.
*/
package notify

import (
	"fmt"
	"log/slog"
)

// TodayReport is the data rendered into the notification.
type TodayReport struct {
	Date        string
	Identifiers []string
	// New holds the identifiers no earlier run published on Date.
	New        []string
	OutputPath string
	Uploaded   bool
	UploadErr  string
}

func (r TodayReport) IsNew(id string) bool {
	for _, n := range r.New {
		if n == id {
			return true
		}
	}
	return false
}

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

type Renderer interface {
	Render(report TodayReport) (*RenderedMessage, error)
}

type Sender interface {
	Send(msg *RenderedMessage) error
}

type Notifier struct {
	renderer Renderer
	sender   Sender
}

func NewNotifier(renderer Renderer, sender Sender) *Notifier {
	return &Notifier{renderer: renderer, sender: sender}
}

// NewEmailNotifier wires the HTML renderer to an SMTP sender.
func NewEmailNotifier(cfg SMTPConfig) *Notifier {
	return NewNotifier(NewHTMLEmailRenderer(), NewSMTPSender(cfg))
}

func (n *Notifier) NotifyToday(report TodayReport) error {
	msg, err := n.renderer.Render(report)
	if err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}
	if err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	slog.Info("notification sent", "subject", msg.Subject)
	return nil
}
