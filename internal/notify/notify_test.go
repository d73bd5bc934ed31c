package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"
)

type captureSender struct {
	sent []*RenderedMessage
	err  error
}

func (c *captureSender) Send(msg *RenderedMessage) error {
	c.sent = append(c.sent, msg)
	return c.err
}

var report = TodayReport{
	Date:        "2024-06-01",
	Identifiers: []string{"00042", "65432"},
	New:         []string{"65432"},
	OutputPath:  "out/today",
	UploadErr:   "scp failed with status 1",
}

func TestRender(t *testing.T) {
	msg, err := NewHTMLEmailRenderer().Render(report)
	require.NoError(t, err)

	require.Equal(t, "AIPS today 2024-06-01: 2 identifiers (1 new)", msg.Subject)
	require.Contains(t, msg.Text, "• 00042\n")
	require.Contains(t, msg.Text, "• 65432 (new)\n")
	require.Contains(t, msg.Text, "Upload: FAILED (scp failed with status 1)")

	require.Contains(t, msg.HTML, `<span class="id-tag new">65432</span>`)
	require.Contains(t, msg.HTML, `<span class="id-tag">00042</span>`)
	require.Contains(t, msg.HTML, "1 new since last run")
}

func TestRenderEmpty(t *testing.T) {
	msg, err := NewHTMLEmailRenderer().Render(TodayReport{Date: "2024-06-01", Uploaded: true})
	require.NoError(t, err)
	require.Contains(t, msg.Text, "No identifiers for today.")
	require.Contains(t, msg.Text, "Upload: done")
	require.False(t, strings.Contains(msg.HTML, "new since last run"))
}

func TestNotifyToday(t *testing.T) {
	sender := &captureSender{}
	n := NewNotifier(NewHTMLEmailRenderer(), sender)
	require.NoError(t, n.NotifyToday(report))
	require.Len(t, sender.sent, 1)

	sender.err = errors.New("connection refused")
	require.ErrorContains(t, n.NotifyToday(report), "connection refused")
}

func TestSMTPSender(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Server: "smtp.example.com", Port: 587, User: "bot@example.com", To: "ops@example.com, qa@example.com"})

	var sent []*gomail.Message
	s.send = func(m ...*gomail.Message) error {
		sent = append(sent, m...)
		return nil
	}
	require.NoError(t, s.Send(&RenderedMessage{Subject: "subject", Text: "text", HTML: "<p>html</p>"}))
	require.Len(t, sent, 1)
	require.Equal(t, []string{"bot@example.com"}, sent[0].GetHeader("From"))
	require.Equal(t, []string{"ops@example.com", "qa@example.com"}, sent[0].GetHeader("To"))
	require.Equal(t, []string{"subject"}, sent[0].GetHeader("Subject"))

	s.send = func(m ...*gomail.Message) error { return errors.New("connection refused") }
	require.ErrorContains(t, s.Send(&RenderedMessage{Subject: "subject"}), "smtp smtp.example.com:587: connection refused")
}

func TestSMTPSenderWithoutRecipients(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Server: "smtp.example.com", To: " , "})
	s.send = func(m ...*gomail.Message) error {
		t.Fatal("no recipients must not dial")
		return nil
	}
	require.ErrorContains(t, s.Send(&RenderedMessage{Subject: "subject"}), "no recipients")
}
