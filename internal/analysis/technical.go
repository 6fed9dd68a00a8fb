package analysis

import "strings"

// CompanyProfile describes the bidding company's delivery capacity. The
// capability matcher scores tender requirements against it.
type CompanyProfile struct {
	Name            string
	Capabilities    []string
	Certifications  []string
	TeamSize        int
	ExperienceYears int
}

// DefaultCompanyProfile is the standing profile used when no custom one
// is configured.
func DefaultCompanyProfile() CompanyProfile {
	return CompanyProfile{
		Name: "Saudi technology contractor",
		Capabilities: []string{
			"software development", "system integration", "cloud",
			"data", "network", "security", "maintenance", "support",
			"تقنية", "برمجة", "نظام", "صيانة", "دعم",
		},
		Certifications:  []string{"ISO 9001", "ISO 27001"},
		TeamSize:        25,
		ExperienceYears: 10,
	}
}

// Summary renders the profile as prompt context for the analysis provider.
func (p CompanyProfile) Summary() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString("\nCapabilities: ")
	b.WriteString(strings.Join(p.Capabilities, ", "))
	b.WriteString("\nCertifications: ")
	b.WriteString(strings.Join(p.Certifications, ", "))
	return b.String()
}

// evaluateTechnical scores the tender's requirements against the
// company profile and derives a feasibility verdict.
func evaluateTechnical(requirements requirementsAnalysis, tenderText string, profile CompanyProfile) Technical {
	capabilityMatch := matchCapabilities(requirements.TechnicalRequirements, profile)

	scores := []float64{capabilityMatch}
	if profile.ExperienceYears >= 5 {
		scores = append(scores, 100)
	} else {
		scores = append(scores, 50)
	}

	requiredTeam := estimateTeamSize(tenderText, identifyProjectType(tenderText))
	if profile.TeamSize >= requiredTeam {
		scores = append(scores, 100)
	} else {
		scores = append(scores, 50)
	}

	var total float64
	for _, s := range scores {
		total += s
	}
	score := total / float64(len(scores))

	return Technical{
		FeasibilityScore: round2(score),
		FeasibilityLevel: feasibilityLevel(score),
		CapabilityMatch:  round2(capabilityMatch),
	}
}

// matchCapabilities returns the percentage of requirements the profile
// covers. No stated requirements counts as a neutral full match.
func matchCapabilities(required []string, profile CompanyProfile) float64 {
	if len(required) == 0 {
		return 100
	}
	matched := 0
	for _, req := range required {
		reqLower := strings.ToLower(req)
		for _, capability := range profile.Capabilities {
			capLower := strings.ToLower(capability)
			if strings.Contains(reqLower, capLower) || strings.Contains(capLower, reqLower) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required)) * 100
}

func feasibilityLevel(score float64) string {
	switch {
	case score >= 80:
		return "High"
	case score >= 60:
		return "Medium"
	case score >= 40:
		return "Low"
	default:
		return "Very Low"
	}
}
