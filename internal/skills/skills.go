// Package skills detects known technology and practice keywords in free text.
package skills

import "strings"

// Vocabulary is the fixed, ordered list of recognized skills. Extract returns
// matches in this order.
var Vocabulary = []string{
	"javascript", "typescript", "python", "java", "go", "rust", "c++", "c#",
	"react", "vue", "angular", "svelte", "next.js", "nuxt.js", "node.js",
	"express", "nestjs", "django", "flask", "fastapi",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"aws", "gcp", "azure", "docker", "kubernetes", "terraform",
	"react native", "flutter", "swift", "kotlin",
	"figma", "sketch", "adobe xd",
	"git", "github", "gitlab", "ci/cd", "jenkins", "github actions",
	"machine learning", "ai", "data science", "tensorflow", "pytorch",
	"product management", "agile", "scrum", "jira",
}

// Extract returns every vocabulary term that occurs in text as a
// case-insensitive substring. There is no word-boundary check, so "java"
// is found inside "javascript" and "go" inside "good".
func Extract(text string) []string {
	found := []string{}
	if text == "" {
		return found
	}

	lower := strings.ToLower(text)
	for _, term := range Vocabulary {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}

	return found
}
