// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// AcceptanceEmailData holds data for membership/participation acceptance
// notifications.
type AcceptanceEmailData struct {
	SiteName string
	Name     string // recipient display name
	Target   string // organization or event name
	Kind     string // "organization" or "event"
	Link     string // absolute URL to the target page
}

// BuildAcceptanceEmail creates the notification sent when an application
// is accepted, with both HTML and text bodies.
func BuildAcceptanceEmail(data AcceptanceEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("You've been accepted to %s", data.Target),
		TextBody: buildAcceptanceText(data),
		HTMLBody: buildAcceptanceHTML(data),
	}
}

func buildAcceptanceText(data AcceptanceEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.Name)
	fmt.Fprintf(&buf, "Your application to the %s %q was accepted.\n\n", data.Kind, data.Target)
	if data.Link != "" {
		buf.WriteString("View it here:\n")
		buf.WriteString(data.Link + "\n\n")
	}
	fmt.Fprintf(&buf, "— %s\n", data.SiteName)
	return buf.String()
}

func buildAcceptanceHTML(data AcceptanceEmailData) string {
	tmpl := template.Must(template.New("acceptance").Parse(acceptanceHTMLTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Template is static and data is plain strings; fall back to text.
		return ""
	}
	return buf.String()
}

const acceptanceHTMLTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <p>Hi {{.Name}},</p>
  <p>Your application to the {{.Kind}} <strong>{{.Target}}</strong> was accepted.</p>
  {{if .Link}}<p><a href="{{.Link}}">View {{.Target}}</a></p>{{end}}
  <p>— {{.SiteName}}</p>
</body>
</html>`
