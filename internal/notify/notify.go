// Package notify renders and delivers the platform's e-mails.
package notify

import (
	"context"
	"log/slog"

	"github.com/garnizeh/quantumwork/pkg/models"
)

// NewsletterJobLimit is how many jobs a newsletter lists.
const NewsletterJobLimit = 5

// Result is the outcome of one send. Failures are reported here and never
// returned as errors.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type RecipientResult struct {
	Email string `json:"email"`
	Result
}

type NewsletterResult struct {
	Success bool              `json:"success"`
	Sent    int               `json:"sent"`
	Results []RecipientResult `json:"results,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// RecipientLister yields the active candidates subscribed to the newsletter.
type RecipientLister interface {
	NewsletterRecipients(ctx context.Context) ([]models.Recipient, error)
}

type Options struct {
	From     string
	FromName string
	SiteURL  string
	// Unsubscriber, when set, adds a signed unsubscribe link to newsletters.
	Unsubscriber *Unsubscriber
}

type Notifier struct {
	transport Transport
	opts      Options
	logger    *slog.Logger
}

func New(transport Transport, opts Options, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{transport: transport, opts: opts, logger: logger}
}

// Send renders the named template for data and delivers it to one address.
func (n *Notifier) Send(ctx context.Context, to, tmpl string, data Data) Result {
	data.SiteURL = n.opts.SiteURL

	r, err := render(tmpl, data)
	if err != nil {
		n.logger.Error("render email", slog.String("template", tmpl), slog.Any("err", err))
		return Result{Error: err.Error()}
	}

	id, err := n.transport.Send(ctx, &Message{
		FromName: n.opts.FromName,
		From:     n.opts.From,
		To:       to,
		Subject:  r.Subject,
		Text:     r.Text,
		HTML:     r.HTML,
	})
	if err != nil {
		n.logger.Error("send email", slog.String("template", tmpl), slog.String("to", to), slog.Any("err", err))
		return Result{Error: err.Error()}
	}

	n.logger.Info("email sent", slog.String("template", tmpl), slog.String("to", to), slog.String("message_id", id))
	return Result{Success: true, MessageID: id}
}

// SendNewsletterToAll mails the newsletter to every subscribed recipient in
// turn. A failed delivery is recorded and the loop continues.
func (n *Notifier) SendNewsletterToAll(ctx context.Context, recipients RecipientLister, jobs []NewsletterJob) NewsletterResult {
	list, err := recipients.NewsletterRecipients(ctx)
	if err != nil {
		n.logger.Error("load newsletter recipients", slog.Any("err", err))
		return NewsletterResult{Error: err.Error()}
	}

	top := jobs
	if len(top) > NewsletterJobLimit {
		top = top[:NewsletterJobLimit]
	}

	results := make([]RecipientResult, 0, len(list))
	for _, rcpt := range list {
		data := Data{JobsCount: len(jobs), Jobs: top}
		if n.opts.Unsubscriber != nil {
			data.UnsubscribeURL = n.opts.Unsubscriber.URL(rcpt.ID, rcpt.Email)
		}
		res := n.Send(ctx, rcpt.Email, TemplateNewsletter, data)
		results = append(results, RecipientResult{Email: rcpt.Email, Result: res})
	}

	return NewsletterResult{Success: true, Sent: len(results), Results: results}
}
