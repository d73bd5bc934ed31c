package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// HTMLEmailRenderer renders notifications as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

func subject(report TodayReport) string {
	return fmt.Sprintf("AIPS today %s: %d identifiers (%d new)", report.Date, len(report.Identifiers), len(report.New))
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(report TodayReport) (*RenderedMessage, error) {
	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, report); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject(report),
		Text:    renderPlainText(report),
		HTML:    htmlBuf.String(),
	}, nil
}

// renderPlainText produces a readable plain text version for email clients that don't support HTML.
func renderPlainText(report TodayReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("AIPS authorizations dated %s\n", report.Date))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(fmt.Sprintf("File: %s\n", report.OutputPath))
	if report.Uploaded {
		sb.WriteString("Upload: done\n")
	} else if report.UploadErr != "" {
		sb.WriteString(fmt.Sprintf("Upload: FAILED (%s)\n", report.UploadErr))
	}
	sb.WriteString("\n")

	if len(report.Identifiers) == 0 {
		sb.WriteString("No identifiers for today.\n")
		return sb.String()
	}

	sb.WriteString("IDENTIFIERS\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	for _, id := range report.Identifiers {
		if report.IsNew(id) {
			sb.WriteString(fmt.Sprintf("• %s (new)\n", id))
		} else {
			sb.WriteString(fmt.Sprintf("• %s\n", id))
		}
	}

	return sb.String()
}
