package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/garnizeh/quantumwork/internal/notify"
	"github.com/garnizeh/quantumwork/internal/pipeline"
	"github.com/garnizeh/quantumwork/pkg/models"
	"github.com/garnizeh/quantumwork/pkg/repository/mock"
)

type fakeCollector struct {
	records []models.JobRecord
	useMock bool
	country string
}

func (f *fakeCollector) Run(ctx context.Context, useMock bool, country string) []models.JobRecord {
	f.useMock, f.country = useMock, country
	return f.records
}

type sent struct {
	to   string
	tmpl string
	data notify.Data
}

type fakeMailer struct {
	sent   []sent
	failTo map[string]bool
}

func (f *fakeMailer) Send(ctx context.Context, to, tmpl string, data notify.Data) notify.Result {
	if f.failTo[to] {
		return notify.Result{Error: "rejected"}
	}
	f.sent = append(f.sent, sent{to, tmpl, data})
	return notify.Result{Success: true, MessageID: "<1>"}
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func seedCandidates(t *testing.T, store *mock.Store, cands ...models.Candidate) {
	t.Helper()
	for i := range cands {
		if _, err := store.CreateCandidate(context.Background(), &cands[i]); err != nil {
			t.Fatalf("seed candidate: %v", err)
		}
	}
}

func TestScrape(t *testing.T) {
	store := mock.NewStore()
	col := &fakeCollector{records: []models.JobRecord{
		{Title: "A", Company: "X"},
		{Title: "A", Company: "X"},
		{Title: "B", Company: "X"},
	}}
	r := pipeline.New(col, store, &fakeMailer{}, "https://quantumwork.co", discard())

	res := r.Scrape(context.Background(), true, "usa")
	if res.Saved != 2 || res.Duplicates != 1 || res.Total != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !col.useMock || col.country != "usa" {
		t.Fatalf("options not forwarded: %+v", col)
	}
}

func TestUpdate_NotifiesTopMatchPerCandidate(t *testing.T) {
	store := mock.NewStore()
	seedCandidates(t, store,
		models.Candidate{Email: "ana@x.com", FullName: "Ana", Skills: []string{"react", "node.js"}},
		models.Candidate{Email: "bob@x.com", FullName: "Bob", Skills: []string{"python"}},
		models.Candidate{Email: "cy@x.com", FullName: "Cy", Skills: []string{"cobol"}},
	)
	col := &fakeCollector{records: []models.JobRecord{
		{Title: "Fullstack", Company: "Acme", SkillsRequired: []string{"react", "node.js", "aws"}, SourceURL: "https://acme/1"},
		{Title: "Frontend", Company: "Beta", SkillsRequired: []string{"react"}},
		{Title: "Data", Company: "Gamma", SkillsRequired: []string{"python", "sql"}, Salary: "$100k"},
	}}
	mailer := &fakeMailer{failTo: map[string]bool{"bob@x.com": true}}
	r := pipeline.New(col, store, mailer, "https://quantumwork.co", discard())

	res, err := r.Update(context.Background(), pipeline.UpdateOptions{Notify: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Saved != 3 || res.Matches != 3 || res.Candidates != 2 || res.Notified != 1 || res.NotifyFailed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one delivered mail, got %d", len(mailer.sent))
	}
	m := mailer.sent[0]
	if m.to != "ana@x.com" || m.tmpl != notify.TemplateJobMatch {
		t.Fatalf("unexpected mail %+v", m)
	}
	// Frontend scores 100 and outranks Fullstack at 67
	if m.data.JobTitle != "Frontend" || m.data.MatchPercentage != 100 {
		t.Fatalf("expected top match mailed, got %+v", m.data)
	}
	if m.data.ApplyURL != "https://quantumwork.co/jobs" || m.data.Location != "Remote" {
		t.Fatalf("expected fallbacks, got %q %q", m.data.ApplyURL, m.data.Location)
	}

	if len(store.Recorded) != 1 || store.Recorded[0].CandidateEmail != "ana@x.com" {
		t.Fatalf("expected only the delivered match recorded, got %+v", store.Recorded)
	}
}

func TestUpdate_SkipsMatchingWithoutNewJobs(t *testing.T) {
	store := mock.NewStore()
	seedCandidates(t, store, models.Candidate{Email: "ana@x.com", Skills: []string{"react"}})
	col := &fakeCollector{records: []models.JobRecord{{Title: "F", Company: "B", SkillsRequired: []string{"react"}}}}
	mailer := &fakeMailer{}
	r := pipeline.New(col, store, mailer, "", discard())

	if _, err := r.Update(context.Background(), pipeline.UpdateOptions{Notify: true}); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	res, err := r.Update(context.Background(), pipeline.UpdateOptions{Notify: true})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if res.Saved != 0 || res.Duplicates != 1 || res.Matches != 0 {
		t.Fatalf("unexpected second run %+v", res)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("second run must not notify, sent %d", len(mailer.sent))
	}
}

func TestUpdate_NoNotify(t *testing.T) {
	store := mock.NewStore()
	seedCandidates(t, store, models.Candidate{Email: "ana@x.com", Skills: []string{"react"}})
	col := &fakeCollector{records: []models.JobRecord{{Title: "F", Company: "B", SkillsRequired: []string{"react"}}}}
	mailer := &fakeMailer{}

	res, err := pipeline.New(col, store, mailer, "", discard()).Update(context.Background(), pipeline.UpdateOptions{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Matches != 1 || res.Notified != 0 || len(mailer.sent) != 0 {
		t.Fatalf("unexpected result %+v sent=%d", res, len(mailer.sent))
	}
}

func TestUpdate_MatcherError(t *testing.T) {
	store := mock.NewStore()
	col := &fakeCollector{records: []models.JobRecord{{Title: "F", Company: "B"}}}
	r := pipeline.New(col, &failingMatchStore{Store: store}, &fakeMailer{}, "", discard())

	res, err := r.Update(context.Background(), pipeline.UpdateOptions{})
	if err == nil {
		t.Fatalf("expected matcher error")
	}
	if res.Saved != 1 {
		t.Fatalf("ingest counters should survive a matcher error: %+v", res)
	}
}

type failingMatchStore struct {
	*mock.Store
}

func (f *failingMatchStore) ActiveMatchCandidates(context.Context) ([]models.MatchCandidate, error) {
	return nil, errors.New("db locked")
}

func TestGroupByCandidate(t *testing.T) {
	var matches []models.Match
	for i := 0; i < 7; i++ {
		matches = append(matches, models.Match{CandidateID: 1, JobID: int64(i)})
		if i < 2 {
			matches = append(matches, models.Match{CandidateID: 2, JobID: int64(i)})
		}
	}

	groups := pipeline.GroupByCandidate(matches, 5)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 5 || groups[0][0].CandidateID != 1 || groups[0][4].JobID != 4 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if len(groups[1]) != 2 || groups[1][1].JobID != 1 {
		t.Fatalf("unexpected second group %+v", groups[1])
	}
}
