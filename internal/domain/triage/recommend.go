package triage

import (
	"math"
	"strings"
)

// SymptomInput is the patient-supplied material for a symptom evaluation.
type SymptomInput struct {
	Symptoms string `json:"symptoms"`
	// PainScore is the self-reported severity on a 1-10 scale.
	PainScore int                `json:"severity"`
	Age       int                `json:"age,omitempty"`
	Gender    string             `json:"gender,omitempty"`
	Duration  int                `json:"duration_days,omitempty"`
	Vitals    map[string]float64 `json:"vital_signs,omitempty"`
}

// SymptomResult is the outcome of a symptom evaluation.
type SymptomResult struct {
	Condition          string   `json:"condition"`
	Category           string   `json:"category"`
	Confidence         float64  `json:"confidence"`
	Urgency            Severity `json:"urgency"`
	Recommendations    []string `json:"recommendations"`
	NextSteps          []string `json:"next_steps"`
	PainScore          int      `json:"severity_assessment"`
	FollowUpNeeded     bool     `json:"follow_up_needed"`
	SpecialistReferral string   `json:"specialist_referral,omitempty"`
	Degraded           bool     `json:"degraded,omitempty"`
}

// EvaluateSymptoms maps free-text symptoms to the best-matching category and
// derives urgency, recommendations, and next steps. The category with the
// most keyword hits wins; ties resolve to the earlier declared category.
// Urgency escalates to high on an urgency-keyword match or a pain score at
// or above Weights.UrgentPainScore, and to medium at ModeratePainScore.
func (r *Reference) EvaluateSymptoms(in SymptomInput) SymptomResult {
	obs := r.Extract(in.Symptoms, in.Vitals)

	best, bestHits, totalHits := "", 0, 0
	for _, c := range r.Categories {
		hits := obs.CategoryHits[c.Name]
		totalHits += hits
		if hits > bestHits {
			best, bestHits = c.Name, hits
		}
	}

	if best == "" {
		return SymptomResult{
			Condition:       "Unable to determine",
			Category:        "unknown",
			Urgency:         SeverityMedium,
			Recommendations: []string{"Please consult with a healthcare professional"},
			NextSteps:       []string{"Schedule appointment with doctor"},
			PainScore:       in.PainScore,
			FollowUpNeeded:  true,
			Degraded:        obs.Degraded,
		}
	}

	cat := r.category(best)
	urgency := r.symptomUrgency(obs.Text, cat, in.PainScore)

	confidence := 0.0
	if totalHits > 0 {
		confidence = math.Round(float64(bestHits)/float64(totalHits)*1000) / 10
	}

	res := SymptomResult{
		Condition:       cat.Conditions[0],
		Category:        cat.Name,
		Confidence:      confidence,
		Urgency:         urgency,
		Recommendations: r.buildRecommendations(cat, urgency),
		NextSteps:       nextSteps(urgency),
		PainScore:       in.PainScore,
		FollowUpNeeded:  urgency >= SeverityMedium,
		Degraded:        obs.Degraded,
	}
	if urgency > SeverityLow {
		res.SpecialistReferral = cat.Name
	}
	return res
}

func (r *Reference) symptomUrgency(text string, cat *Category, painScore int) Severity {
	for _, kw := range cat.UrgencyKeywords {
		if strings.Contains(text, kw) {
			return SeverityHigh
		}
	}
	if painScore >= r.Weights.UrgentPainScore {
		return SeverityHigh
	}
	if painScore >= r.Weights.ModeratePainScore {
		return SeverityMedium
	}
	return SeverityLow
}

// buildRecommendations copies the category's base recommendations and
// prepends the urgency escalation. At high or critical urgency the first
// entry is always the immediate-attention instruction.
func (r *Reference) buildRecommendations(cat *Category, urgency Severity) []string {
	recs := make([]string, 0, len(cat.Recommendations)+1)
	switch {
	case urgency >= SeverityHigh:
		recs = append(recs, "Seek immediate medical attention")
	case urgency == SeverityMedium:
		recs = append(recs, "Schedule appointment with doctor within 24-48 hours")
	}
	recs = append(recs, cat.Recommendations...)
	return recs
}

func nextSteps(urgency Severity) []string {
	switch {
	case urgency >= SeverityHigh:
		return []string{"Call emergency services or go to emergency room", "Contact your doctor immediately"}
	case urgency == SeverityMedium:
		return []string{"Schedule appointment with appropriate specialist", "Monitor symptoms closely"}
	default:
		return []string{"Schedule routine appointment", "Continue monitoring symptoms"}
	}
}
