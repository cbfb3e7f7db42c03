package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/garnizeh/quantumwork/pkg/models"
)

func TestRemoteOK_Fetch(t *testing.T) {
	up := newFakeUpstream()
	up.set(keyRemoteOK, `[
		{"legal": "notice"},
		{"id": "123", "position": "Senior Go Engineer", "company": "Acme", "description": "<p>Docker and <b>Kubernetes</b></p>",
		 "salary_min": 100000, "salary_max": 150000, "location": "Worldwide", "tags": ["dev", "contract"],
		 "apply_url": "https://acme.example/apply", "url": "https://remoteok.com/l/123"},
		{"id": 124, "position": "", "company": "NoTitle"},
		{"id": 125, "position": "Designer", "url": "https://remoteok.com/l/125"}
	]`)

	recs := NewRemoteOK(up.fetcher(t), discardLogger()).Fetch(context.Background())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(recs), recs)
	}

	r := recs[0]
	if r.Title != "Senior Go Engineer" || r.Company != "Acme" || r.Source != "RemoteOK" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Type != "contract" {
		t.Fatalf("contract tag not honored: %q", r.Type)
	}
	if r.Salary != "$100000 - $150000" {
		t.Fatalf("unexpected salary %q", r.Salary)
	}
	if r.SourceURL != "https://acme.example/apply" {
		t.Fatalf("apply_url must win over url: %q", r.SourceURL)
	}
	if r.Description != "Docker and Kubernetes" {
		t.Fatalf("tags not stripped: %q", r.Description)
	}
	if !slices.Equal(r.SkillsRequired, []string{"go", "docker", "kubernetes"}) {
		t.Fatalf("unexpected skills %v", r.SkillsRequired)
	}
	if r.Requirements != `["go","docker","kubernetes"]` {
		t.Fatalf("requirements must hold serialized skills: %s", r.Requirements)
	}

	d := recs[1]
	if d.Company != "Unknown" || d.Salary != "Not specified" || d.Location != "Remote" || d.Type != "full-time" {
		t.Fatalf("defaults not applied: %+v", d)
	}
	if d.SourceURL != "https://remoteok.com/l/125" {
		t.Fatalf("url fallback not applied: %q", d.SourceURL)
	}

	if ua := up.agents[0]; !strings.HasPrefix(ua, "Mozilla/5.0") {
		t.Fatalf("expected browser-like user agent, got %q", ua)
	}
}

func TestRemoteOK_FirstTwenty(t *testing.T) {
	items := []map[string]any{{"legal": "notice"}}
	for i := range 25 {
		items = append(items, map[string]any{"id": i + 1, "position": fmt.Sprintf("Job %d", i+1)})
	}
	b, _ := json.Marshal(items)

	up := newFakeUpstream()
	up.set(keyRemoteOK, string(b))

	recs := NewRemoteOK(up.fetcher(t), discardLogger()).Fetch(context.Background())
	if len(recs) != 20 {
		t.Fatalf("expected 20 records, got %d", len(recs))
	}
	if recs[0].Title != "Job 1" || recs[19].Title != "Job 20" {
		t.Fatalf("unexpected window: %q..%q", recs[0].Title, recs[19].Title)
	}
}

func TestRemotive_Fetch(t *testing.T) {
	up := newFakeUpstream()
	up.set(keyRemotive, `{"jobs": [
		{"title": "Python Developer", "company_name": "Snake", "description": "Django APIs",
		 "salary": "$90k", "candidate_required_location": "Europe", "job_type": "part_time", "url": "https://remotive.com/j/1"},
		{"title": "Ops"}
	]}`)

	recs := NewRemotive(up.fetcher(t), discardLogger()).Fetch(context.Background())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	r := recs[0]
	if r.Company != "Snake" || r.Salary != "$90k" || r.Location != "Europe" || r.Type != "part_time" || r.Source != "Remotive" {
		t.Fatalf("unexpected mapping: %+v", r)
	}
	// "go" is found inside "django"
	if !slices.Equal(r.SkillsRequired, []string{"python", "go", "django"}) {
		t.Fatalf("unexpected skills %v", r.SkillsRequired)
	}
	if recs[1].SourceURL != "https://remotive.com" {
		t.Fatalf("site fallback missing: %q", recs[1].SourceURL)
	}
}

func TestJobicy_Geo(t *testing.T) {
	up := newFakeUpstream()
	up.set(jobicyKey("portugal"), `{"jobs": [
		{"jobTitle": "Frontend Developer", "companyName": "Lisboa Labs", "jobDescription": "Vue and Figma",
		 "annualSalaryMin": 40000, "annualSalaryMax": 60000, "jobType": ["full-time", "contract"], "url": "https://jobicy.com/j/1"}
	]}`)

	src := NewJobicy(up.fetcher(t), discardLogger(), "portugal")
	if src.Name() != "Jobicy-portugal" {
		t.Fatalf("unexpected name %q", src.Name())
	}

	recs := src.Fetch(context.Background())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.Source != "Jobicy-portugal" || r.Location != "portugal" {
		t.Fatalf("geo not applied: %+v", r)
	}
	if r.Salary != "$40000 - $60000" || r.Type != "full-time, contract" {
		t.Fatalf("unexpected salary/type: %q %q", r.Salary, r.Type)
	}
}

func TestArbeitnow_Fetch(t *testing.T) {
	up := newFakeUpstream()
	up.set(keyArbeitnow, `{"data": [
		{"title": "Kotlin Engineer", "company_name": "Berlin GmbH", "description": "Android", "location": "Berlin", "remote": true, "url": "https://arbeitnow.com/j/1"},
		{"title": "Office Manager", "company_name": "Berlin GmbH", "remote": false}
	]}`)

	recs := NewArbeitnow(up.fetcher(t), discardLogger()).Fetch(context.Background())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Type != "remote" || recs[0].Salary != "Not specified" || recs[0].Location != "Berlin" {
		t.Fatalf("unexpected mapping: %+v", recs[0])
	}
	if recs[1].Type != "full-time" || recs[1].SourceURL != "https://www.arbeitnow.com" {
		t.Fatalf("unexpected defaults: %+v", recs[1])
	}
}

func TestSources_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		skip   bool
	}{
		{name: "network error", skip: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"jobs": [{"title": "x"}]}`},
		{name: "malformed json", body: `<html>blocked</html>`},
		{name: "wrong shape", body: `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newFakeUpstream()
			if !tt.skip {
				up.set(keyRemotive, tt.body)
				up.status[keyRemotive] = tt.status
			}

			recs := NewRemotive(up.fetcher(t), discardLogger()).Fetch(context.Background())
			if recs == nil || len(recs) != 0 {
				t.Fatalf("expected empty non-nil result, got %#v", recs)
			}
		})
	}
}

func TestGuard_RecoversPanic(t *testing.T) {
	recs := guard(context.Background(), discardLogger(), "boom", func(context.Context) ([]models.JobRecord, error) {
		panic("unexpected shape")
	})
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty result after panic, got %#v", recs)
	}
}

func TestNormalize(t *testing.T) {
	if _, ok := normalize(rawJob{Title: "   "}, "X", "https://x"); ok {
		t.Fatalf("blank title must be skipped")
	}

	long := strings.Repeat("é", 600)
	rec, ok := normalize(rawJob{Title: "T", Description: "<div>" + long + "</div>"}, "X", "https://x")
	if !ok {
		t.Fatalf("expected record")
	}
	if n := utf8.RuneCountInString(rec.Description); n != descriptionLimit {
		t.Fatalf("description not truncated to %d runes: %d", descriptionLimit, n)
	}
	if !utf8.ValidString(rec.Description) {
		t.Fatalf("truncation split a rune")
	}
	if rec.SourceURL != "https://x" {
		t.Fatalf("fallback url not used: %q", rec.SourceURL)
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
		D flexString `json:"d"`
		E flexString `json:"e"`
		F flexString `json:"f"`
	}
	in := `{"a": "text", "b": ["x", "y"], "c": 42.5, "d": null, "e": true, "f": {"k": 1}}`
	if err := json.Unmarshal([]byte(in), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "text" || v.B != "x, y" || v.C != "42.5" || v.D != "" || v.E != "true" || v.F != "" {
		t.Fatalf("unexpected values: %+v", v)
	}
}
