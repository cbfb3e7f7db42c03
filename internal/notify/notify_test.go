package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/garnizeh/quantumwork/pkg/models"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   []*Message
	failTo map[string]bool
}

func (f *fakeTransport) Send(ctx context.Context, msg *Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[msg.To] {
		return "", errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return "<id-" + msg.To + ">", nil
}

type fakeRecipients struct {
	list []models.Recipient
	err  error
}

func (f fakeRecipients) NewsletterRecipients(context.Context) ([]models.Recipient, error) {
	return f.list, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestNotifier(tr Transport, unsub *Unsubscriber) *Notifier {
	return New(tr, Options{
		From:         "noreply@quantumwork.co",
		FromName:     "Quantum Work",
		SiteURL:      "https://quantumwork.co",
		Unsubscriber: unsub,
	}, discard())
}

func TestSend_Welcome(t *testing.T) {
	tr := &fakeTransport{}
	n := newTestNotifier(tr, nil)

	res := n.Send(context.Background(), "ana@x.com", TemplateWelcome, Data{FullName: "Ana <b>"})
	if !res.Success || res.MessageID != "<id-ana@x.com>" {
		t.Fatalf("unexpected result %+v", res)
	}
	msg := tr.sent[0]
	if msg.From != "noreply@quantumwork.co" || msg.FromName != "Quantum Work" {
		t.Fatalf("unexpected sender %q %q", msg.FromName, msg.From)
	}
	if msg.Subject != "Welcome to Quantum Work!" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Hi, Ana &lt;b&gt;!") {
		t.Fatalf("name not escaped in html: %s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "https://quantumwork.co") {
		t.Fatalf("text fallback missing site url: %s", msg.Text)
	}
}

func TestSend_Defaults(t *testing.T) {
	tr := &fakeTransport{}
	n := newTestNotifier(tr, nil)

	n.Send(context.Background(), "a@x.com", TemplateWelcome, Data{})
	if !strings.Contains(tr.sent[0].HTML, "Hi, Candidate!") {
		t.Fatalf("expected default name")
	}

	n.Send(context.Background(), "a@x.com", TemplateJobMatch, Data{
		CandidateName:   "Ana",
		JobTitle:        "Go Dev",
		Company:         "Acme",
		MatchPercentage: 67,
		MatchedSkills:   []string{"go", "docker"},
		ApplyURL:        "https://acme/jobs/1",
	})
	m := tr.sent[1]
	if m.Subject != "New matching job: Go Dev" {
		t.Fatalf("unexpected subject %q", m.Subject)
	}
	if !strings.Contains(m.HTML, "To be negotiated") || !strings.Contains(m.HTML, "67% match") {
		t.Fatalf("job match html missing defaults: %s", m.HTML)
	}
	if !strings.Contains(m.HTML, "&bull; docker") {
		t.Fatalf("matched skills not listed: %s", m.HTML)
	}
	if m.Text != "Match found! Go Dev at Acme - 67% compatible. Visit: https://acme/jobs/1" {
		t.Fatalf("unexpected text %q", m.Text)
	}
}

func TestSend_Failures(t *testing.T) {
	tr := &fakeTransport{failTo: map[string]bool{"bad@x.com": true}}
	n := newTestNotifier(tr, nil)

	res := n.Send(context.Background(), "a@x.com", "nope", Data{})
	if res.Success || !strings.Contains(res.Error, "unknown template") {
		t.Fatalf("expected unknown template failure, got %+v", res)
	}

	res = n.Send(context.Background(), "bad@x.com", TemplateWelcome, Data{})
	if res.Success || res.Error != "mailbox unavailable" {
		t.Fatalf("expected transport failure, got %+v", res)
	}
	if len(tr.sent) != 0 {
		t.Fatalf("nothing should have been delivered")
	}
}

func TestSendNewsletterToAll(t *testing.T) {
	tr := &fakeTransport{failTo: map[string]bool{"b@x.com": true}}
	unsub := NewUnsubscriber("secret", "https://api.quantumwork.co", time.Hour, nil)
	n := newTestNotifier(tr, unsub)

	jobs := make([]NewsletterJob, 7)
	for i := range jobs {
		jobs[i] = NewsletterJob{Title: "Job " + string(rune('A'+i)), Company: "Co", URL: "https://x"}
	}
	rcpts := fakeRecipients{list: []models.Recipient{
		{ID: 1, Email: "a@x.com"},
		{ID: 2, Email: "b@x.com"},
		{ID: 3, Email: "c@x.com"},
	}}

	res := n.SendNewsletterToAll(context.Background(), rcpts, jobs)
	if !res.Success || res.Sent != 3 || len(res.Results) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Results[1].Success || res.Results[1].Email != "b@x.com" {
		t.Fatalf("expected failure for b@x.com, got %+v", res.Results[1])
	}
	if !res.Results[2].Success {
		t.Fatalf("loop should continue past failures")
	}

	msg := tr.sent[0]
	if msg.Subject != "7 new remote jobs this week!" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Job E") || strings.Contains(msg.HTML, "Job F") {
		t.Fatalf("newsletter should list exactly the first 5 jobs")
	}
	if !strings.Contains(msg.HTML, "/api/newsletter/unsubscribe?token=") {
		t.Fatalf("missing unsubscribe link")
	}
}

func TestSendNewsletterToAll_RecipientError(t *testing.T) {
	n := newTestNotifier(&fakeTransport{}, nil)
	res := n.SendNewsletterToAll(context.Background(), fakeRecipients{err: errors.New("db gone")}, nil)
	if res.Success || res.Error != "db gone" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSendNewsletter_NoUnsubscribeWithoutPublicURL(t *testing.T) {
	tr := &fakeTransport{}
	n := newTestNotifier(tr, NewUnsubscriber("secret", "", time.Hour, nil))
	n.SendNewsletterToAll(context.Background(), fakeRecipients{list: []models.Recipient{{ID: 1, Email: "a@x.com"}}}, nil)
	if strings.Contains(tr.sent[0].HTML, "Unsubscribe") {
		t.Fatalf("unsubscribe link should be omitted")
	}
	if strings.Contains(tr.sent[0].HTML, "job-card\">") {
		t.Fatalf("job list should be omitted when empty")
	}
}
