package scraper

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/garnizeh/quantumwork/pkg/models"
)

const (
	MockBatchSize = 10
	MockSource    = "Mock Data"
)

var (
	mockCompanies = []string{"TechCorp", "StartupXYZ", "GlobalDevs", "RemoteFirst", "CloudNative"}
	mockTitles    = []string{
		"Senior Full Stack Developer", "React Developer", "Node.js Backend Engineer",
		"DevOps Engineer", "Python Developer", "Data Engineer",
		"Frontend Developer", "Mobile Developer (React Native)",
		"Software Architect", "Engineering Manager",
	}
	mockSkillSets = [][]string{
		{"javascript", "react", "node.js"},
		{"python", "django", "postgresql"},
		{"aws", "docker", "kubernetes"},
		{"typescript", "angular", "rxjs"},
		{"go", "microservices", "grpc"},
		{"react native", "firebase", "typescript"},
		{"java", "spring boot", "mysql"},
		{"ruby", "rails", "redis"},
	}
)

// MockJobs builds n synthetic listings. Field values are drawn from fixed
// lists with r; a nil r uses the package-level generator.
func MockJobs(r *rand.Rand, n int, siteURL string) []models.JobRecord {
	intN := rand.IntN
	float := rand.Float64
	if r != nil {
		intN = r.IntN
		float = r.Float64
	}

	out := make([]models.JobRecord, 0, n)
	for range n {
		set := mockSkillSets[intN(len(mockSkillSets))]
		skillsCopy := append([]string(nil), set...)
		reqs, _ := json.Marshal(set)

		typ := defaultType
		if float() > 0.7 {
			typ = "contract"
		}

		out = append(out, models.JobRecord{
			Title:          mockTitles[intN(len(mockTitles))],
			Company:        mockCompanies[intN(len(mockCompanies))],
			Description:    fmt.Sprintf("Opportunity to work with %s in a 100%% remote environment.", strings.Join(set, ", ")),
			Requirements:   string(reqs),
			SkillsRequired: skillsCopy,
			Salary:         fmt.Sprintf("$%dk - $%dk/year", 80+intN(100), 120+intN(100)),
			Location:       "Remote (Anywhere)",
			Type:           typ,
			Source:         MockSource,
			SourceURL:      siteURL,
		})
	}

	return out
}
