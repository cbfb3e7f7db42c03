package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const (
	TemplateWelcome    = "welcome"
	TemplateNewsletter = "newsletter"
	TemplateJobMatch   = "jobMatch"
)

//go:embed templates/*.html
var htmlFS embed.FS

// NewsletterJob is one listing shown in a newsletter.
type NewsletterJob struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
	URL      string `json:"url"`
}

// Data is the union of the fields the templates read. Absent fields render
// as their defaults.
type Data struct {
	FullName string `json:"full_name"`

	JobsCount int             `json:"jobsCount"`
	Jobs      []NewsletterJob `json:"jobs"`

	CandidateName   string   `json:"candidateName"`
	JobTitle        string   `json:"jobTitle"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Salary          string   `json:"salary"`
	MatchPercentage int      `json:"matchPercentage"`
	MatchedSkills   []string `json:"matchedSkills"`
	ApplyURL        string   `json:"applyUrl"`

	// Filled in by the Notifier.
	SiteURL        string `json:"-"`
	UnsubscribeURL string `json:"-"`
}

type template struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

type rendered struct {
	Subject string
	Text    string
	HTML    string
}

var templates = map[string]template{
	TemplateWelcome: mustTemplate("welcome",
		`Welcome to Quantum Work!`,
		`Welcome to Quantum Work! Your registration is complete and you will now receive jobs that fit your profile. Visit: {{.SiteURL}}`,
		"templates/welcome.html"),
	TemplateNewsletter: mustTemplate("newsletter",
		`{{.JobsCount}} new remote jobs this week!`,
		`Quantum Work Newsletter - {{.JobsCount}} new jobs! Visit: {{.SiteURL}}/jobs{{if .UnsubscribeURL}}
Unsubscribe: {{.UnsubscribeURL}}{{end}}`,
		"templates/newsletter.html"),
	TemplateJobMatch: mustTemplate("jobMatch",
		`New matching job: {{.JobTitle}}`,
		`Match found! {{.JobTitle}} at {{.Company}} - {{.MatchPercentage}}% compatible. Visit: {{.ApplyURL}}`,
		"templates/job_match.html"),
}

func mustTemplate(name, subject, text, htmlFile string) template {
	return template{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.ParseFS(htmlFS, htmlFile)),
	}
}

func render(name string, data Data) (*rendered, error) {
	t, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}

	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", name, err)
	}

	return &rendered{Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}
