package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// EmailConfig holds SMTP settings for the digest mail.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// mailSender is the part of *mail.Client the notifier uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailNotifier sends one HTML digest per batch over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg    EmailConfig
	sender mailSender
	logger *slog.Logger
}

// NewEmailNotifier creates an SMTP client for cfg. The connection is only
// opened when a digest is sent.
func NewEmailNotifier(cfg EmailConfig, logger *slog.Logger) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client for %s: %w", cfg.Host, err)
	}
	return &EmailNotifier{cfg: cfg, sender: client, logger: logger}, nil
}

// Notify mails a single digest listing every posting in the batch.
func (n *EmailNotifier) Notify(ctx context.Context, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}
	msg, err := n.buildMessage(postings)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending digest to %s: %w", strings.Join(n.cfg.To, ", "), err)
	}
	n.logger.Info("email digest sent", "postings", len(postings), "recipients", len(n.cfg.To))
	return nil
}

func (n *EmailNotifier) buildMessage(postings []model.Posting) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", n.cfg.From, err)
	}
	if err := msg.To(n.cfg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient list: %w", err)
	}
	msg.Subject(digestSubject(postings))

	var html bytes.Buffer
	if err := digestTemplate.Execute(&html, digestRows(postings)); err != nil {
		return nil, fmt.Errorf("rendering digest: %w", err)
	}
	msg.SetBodyString(mail.TypeTextHTML, html.String())
	msg.AddAlternativeString(mail.TypeTextPlain, digestText(postings))
	return msg, nil
}

func digestSubject(postings []model.Posting) string {
	if len(postings) == 1 {
		return "New job posting: " + postings[0].Title
	}
	return fmt.Sprintf("%d new job postings", len(postings))
}

type digestRow struct {
	Title    string
	Company  string
	Location string
	Posted   string
	Source   string
	URL      string
}

func digestRows(postings []model.Posting) []digestRow {
	rows := make([]digestRow, len(postings))
	for i, p := range postings {
		rows[i] = digestRow{
			Title:    p.Title,
			Company:  p.Company,
			Location: p.Location,
			Posted:   postedText(p),
			Source:   p.SourceName,
			URL:      p.URL,
		}
	}
	return rows
}

func digestText(postings []model.Posting) string {
	var b strings.Builder
	for _, p := range postings {
		fmt.Fprintf(&b, "%s", p.Title)
		if p.Company != "" {
			fmt.Fprintf(&b, " at %s", p.Company)
		}
		if p.Location != "" {
			fmt.Fprintf(&b, " (%s)", p.Location)
		}
		fmt.Fprintf(&b, "\n%s\n\n", p.URL)
	}
	return b.String()
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!doctype html>
<html><body style="font-family: sans-serif">
<h2>{{len .}} new job posting{{if ne (len .) 1}}s{{end}}</h2>
<table cellpadding="6" style="border-collapse: collapse">
<tr style="text-align: left"><th>Title</th><th>Company</th><th>Location</th><th>Posted</th><th>Source</th></tr>
{{range .}}<tr>
<td><a href="{{.URL}}">{{.Title}}</a></td><td>{{.Company}}</td><td>{{.Location}}</td><td>{{.Posted}}</td><td>{{.Source}}</td>
</tr>
{{end}}</table>
</body></html>
`))
