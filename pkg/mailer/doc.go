// Package mailer renders markdown email templates and delivers them through
// a pluggable provider.
//
// Three pieces cooperate:
//
//   - Sender delivers a prepared Email. Providers live in subpackages:
//     mailer/smtp (any SMTP relay, including Gmail with an app password or
//     OAuth2) and mailer/resend (Resend HTTP API).
//   - Renderer executes a markdown template with YAML frontmatter, converts it
//     to HTML with goldmark and wraps it in an HTML layout.
//   - Mailer combines the two and resolves the subject.
//
// # Usage
//
//	sender := smtp.New(smtp.Config{
//		Host:      "smtp.gmail.com",
//		Port:      587,
//		Username:  "events@example.com",
//		Password:  os.Getenv("SMTP_PASSWORD"),
//		FromEmail: "events@example.com",
//	})
//
//	m := mailer.New(sender, mailer.NewRenderer(templates.FS), mailer.Config{
//		FallbackSubject: "Your certificate",
//		DefaultLayout:   "base.html",
//	})
//
//	if err := m.Ping(ctx); err != nil {
//		return err
//	}
//
//	pdf, err := mailer.AttachFile("certificates/R1.pdf")
//	if err != nil {
//		return err
//	}
//
//	err = m.Send(ctx, mailer.SendParams{
//		To:          "asha@example.com",
//		Template:    "certificate.md",
//		Data:        map[string]any{"Name": "Asha"},
//		Attachments: []mailer.Attachment{pdf},
//	})
//
// # Templates
//
// A template is markdown with optional frontmatter:
//
//	---
//	Subject: Certificate for {{.EventName}}
//	---
//	Dear **{{.Name}}**,
//
//	[!button|Download certificate]({{.DownloadURL}})
//
// The body and the subject are text/template documents executed with
// SendParams.Data. The executed markdown doubles as the plain-text part.
//
// The [!button|Label](URL) syntax renders an anchor with class "button".
// Only http, https and mailto URLs become links; anything else renders
// as the bare label.
//
// # Layouts
//
// Layouts are html/template files in the layout directory ("layouts" by
// default). They receive .Content (the rendered HTML) and .Metadata
// (the frontmatter map).
//
// # Connectivity
//
// Senders that implement Pinger can be checked before a run with
// Mailer.Ping. Other senders report ErrPingUnsupported.
package mailer
