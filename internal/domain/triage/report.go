package triage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Medication is one medication mention extracted from report text.
type Medication struct {
	Name      string  `json:"name"`
	Dosage    float64 `json:"dosage"`
	Unit      string  `json:"unit"`
	Frequency string  `json:"frequency"`
}

// BPReading is an extracted blood pressure with its staging.
type BPReading struct {
	Systolic  int     `json:"systolic"`
	Diastolic int     `json:"diastolic"`
	Status    BPStage `json:"status"`
}

// NumericReading is an extracted single-value vital with a normal/abnormal flag.
type NumericReading struct {
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// ReportVitals holds the vital signs found in report text.
type ReportVitals struct {
	BloodPressure *BPReading      `json:"blood_pressure,omitempty"`
	HeartRate     *NumericReading `json:"heart_rate,omitempty"`
	Temperature   *NumericReading `json:"temperature,omitempty"`
}

// ReportAnalysis is the full rule-based analysis of a medical report's text.
type ReportAnalysis struct {
	ReportType       string        `json:"report_type"`
	LabValues        []LabFinding  `json:"extracted_values"`
	Medications      []Medication  `json:"medications"`
	VitalSigns       ReportVitals  `json:"vital_signs"`
	Symptoms         []string      `json:"symptoms"`
	AbnormalFindings []LabFinding  `json:"abnormal_findings"`
	Recommendations  []string      `json:"recommendations"`
	Summary          string        `json:"summary"`
}

var (
	medicationRe  = regexp.MustCompile(`(\w+(?:\s+\w+)*)\s+(\d+\.?\d*)\s*(mg|ml|g|mcg|units?)\s*(?:(\d+)\s*(?:times?|x)\s*(?:daily|day|per day)?)?`)
	bloodPressRe  = regexp.MustCompile(`(?:blood pressure|bp)[\s:]*(\d+)/(\d+)`)
	heartRateRe   = regexp.MustCompile(`(?:heart rate|hr|pulse)[\s:]*(\d+)`)
	temperatureRe = regexp.MustCompile(`(?:temperature|temp)[\s:]*(\d+\.?\d*)`)
)

var reportSymptomKeywords = []string{
	"pain", "fever", "cough", "shortness of breath", "fatigue",
	"nausea", "vomiting", "diarrhea", "constipation", "headache",
	"dizziness", "chest pain", "abdominal pain", "back pain",
}

// AnalyzeReport runs the rule-based analysis over already-extracted report
// text: type identification, lab-value extraction against the reference
// patterns, medication and vital-sign extraction, abnormal grading, and a
// plain-text summary.
func (r *Reference) AnalyzeReport(text string) ReportAnalysis {
	lower := strings.ToLower(text)

	analysis := ReportAnalysis{
		ReportType:  identifyReportType(lower),
		LabValues:   r.extractLabValues(lower),
		Medications: extractMedications(lower),
		VitalSigns:  extractVitalSigns(lower),
		Symptoms:    extractSymptoms(lower),
	}

	for _, lv := range analysis.LabValues {
		if lv.Status != LabNormal {
			analysis.AbnormalFindings = append(analysis.AbnormalFindings, lv)
		}
	}
	analysis.Recommendations = reportRecommendations(analysis)
	analysis.Summary = reportSummary(analysis)
	return analysis
}

func identifyReportType(lower string) string {
	switch {
	case containsAny(lower, "lab", "laboratory", "blood test", "chemistry"):
		return "laboratory_report"
	case containsAny(lower, "x-ray", "ct scan", "mri", "ultrasound", "imaging"):
		return "imaging_report"
	case containsAny(lower, "prescription", "medication", "pharmacy"):
		return "prescription"
	case containsAny(lower, "discharge", "summary", "hospital"):
		return "discharge_summary"
	case containsAny(lower, "consultation", "visit", "examination"):
		return "consultation_note"
	default:
		return "general_medical_document"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractLabValues matches every reference lab pattern against the text and
// grades each captured value. Tests appear in declaration order; a repeated
// test keeps the last captured value, as later mentions usually restate the
// final result.
func (r *Reference) extractLabValues(lower string) []LabFinding {
	var findings []LabFinding
	for _, lt := range r.LabTests {
		re, err := regexp.Compile(lt.Pattern)
		if err != nil {
			continue
		}

		var last *LabFinding
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			value, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			f, err := r.EvaluateLabValue(lt.Name, value, "")
			if err != nil {
				continue
			}
			last = f
		}
		if last != nil {
			findings = append(findings, *last)
		}
	}
	return findings
}

func extractMedications(lower string) []Medication {
	var meds []Medication
	for _, m := range medicationRe.FindAllStringSubmatch(lower, -1) {
		dosage, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		freq := "as directed"
		if m[4] != "" {
			freq = m[4]
		}
		meds = append(meds, Medication{
			Name:      titleCase(m[1]),
			Dosage:    dosage,
			Unit:      m[3],
			Frequency: freq,
		})
	}
	return meds
}

func extractVitalSigns(lower string) ReportVitals {
	var vitals ReportVitals

	if m := bloodPressRe.FindStringSubmatch(lower); m != nil {
		sys, _ := strconv.Atoi(m[1])
		dia, _ := strconv.Atoi(m[2])
		vitals.BloodPressure = &BPReading{
			Systolic:  sys,
			Diastolic: dia,
			Status:    StageBloodPressure(sys, dia),
		}
	}

	if m := heartRateRe.FindStringSubmatch(lower); m != nil {
		hr, _ := strconv.ParseFloat(m[1], 64)
		status := "abnormal"
		if hr >= 60 && hr <= 100 {
			status = "normal"
		}
		vitals.HeartRate = &NumericReading{Value: hr, Status: status}
	}

	if m := temperatureRe.FindStringSubmatch(lower); m != nil {
		temp, _ := strconv.ParseFloat(m[1], 64)
		status := "abnormal"
		if temp >= 97.0 && temp <= 99.5 {
			status = "normal"
		}
		vitals.Temperature = &NumericReading{Value: temp, Status: status}
	}

	return vitals
}

func extractSymptoms(lower string) []string {
	var symptoms []string
	for _, s := range reportSymptomKeywords {
		if strings.Contains(lower, s) {
			symptoms = append(symptoms, s)
		}
	}
	return symptoms
}

func reportRecommendations(a ReportAnalysis) []string {
	var recs []string
	for _, f := range a.AbnormalFindings {
		switch f.Grade {
		case GradeSevere:
			recs = append(recs, fmt.Sprintf("Immediate medical attention needed for %s", f.Test))
		case GradeModerate:
			recs = append(recs, fmt.Sprintf("Follow up with doctor regarding %s", f.Test))
		}
	}

	switch a.ReportType {
	case "laboratory_report":
		recs = append(recs, "Discuss results with your healthcare provider", "Follow prescribed treatment plan")
	case "prescription":
		recs = append(recs, "Take medications as prescribed", "Monitor for side effects")
	}

	if len(recs) == 0 {
		recs = append(recs, "Continue regular health monitoring", "Maintain healthy lifestyle")
	}
	return recs
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func reportSummary(a ReportAnalysis) string {
	var parts []string

	parts = append(parts, "Report Type: "+titleCase(strings.ReplaceAll(a.ReportType, "_", " ")))

	if len(a.LabValues) > 0 {
		normal := 0
		for _, v := range a.LabValues {
			if v.Status == LabNormal {
				normal++
			}
		}
		parts = append(parts, fmt.Sprintf("Lab Values: %d/%d within normal range", normal, len(a.LabValues)))
	}

	severe := 0
	for _, f := range a.AbnormalFindings {
		if f.Grade == GradeSevere {
			severe++
		}
	}
	if severe > 0 {
		parts = append(parts, fmt.Sprintf("%d severe abnormal finding(s) requiring immediate attention", severe))
	}

	if len(a.Medications) > 0 {
		parts = append(parts, fmt.Sprintf("Medications: %d identified", len(a.Medications)))
	}

	return strings.Join(parts, ". ")
}
