package triage

import "errors"

// Severity is the ordinal urgency scale used across the evaluator. Higher
// values always mean more urgent; combining findings can only raise it.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityNone:     "none",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseSeverity maps a severity name to its ordinal value. Unknown names
// parse as SeverityNone.
func ParseSeverity(s string) Severity {
	for sev, name := range severityNames {
		if name == s {
			return sev
		}
	}
	return SeverityNone
}

// MarshalJSON encodes a Severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	name := string(data)
	if len(name) >= 2 && name[0] == '"' {
		name = name[1 : len(name)-1]
	}
	*s = ParseSeverity(name)
	return nil
}

// VitalCondition classifies which bound a vital breached.
type VitalCondition string

const (
	ConditionCriticallyLow  VitalCondition = "critically_low"
	ConditionCriticallyHigh VitalCondition = "critically_high"
)

// VitalFinding is one out-of-bounds vital sign.
type VitalFinding struct {
	Vital     string         `json:"vital"`
	Value     float64        `json:"value"`
	Condition VitalCondition `json:"condition"`
}

// VitalsResult is the outcome of the emergency vitals check.
type VitalsResult struct {
	IsEmergency       bool           `json:"is_emergency"`
	Score             int            `json:"severity_score"`
	Urgency           Severity       `json:"urgency_level"`
	Indicators        []VitalFinding `json:"indicators"`
	RecommendedAction string         `json:"recommended_action"`
	// UnknownSignals lists supplied vital names with no configured bounds.
	// They contribute nothing to the score but are reported so callers can
	// distinguish "normal" from "not evaluated".
	UnknownSignals []string `json:"unknown_signals,omitempty"`
}

// EvaluateVitals checks each supplied vital against its emergency bounds and
// folds the breaches into a single urgency level. Every breach adds
// Weights.AbnormalVital to the score; the breakpoints map the total to
// critical/high/medium. The check is deterministic and monotonic: adding a
// breach can never lower the resulting urgency.
func (r *Reference) EvaluateVitals(vitals map[string]float64) VitalsResult {
	res := VitalsResult{}

	for _, bound := range r.VitalBounds {
		value, ok := vitals[bound.Name]
		if !ok {
			continue
		}
		switch {
		case value < bound.Min:
			res.Indicators = append(res.Indicators, VitalFinding{
				Vital: bound.Name, Value: value, Condition: ConditionCriticallyLow,
			})
			res.Score += r.Weights.AbnormalVital
		case value > bound.Max:
			res.Indicators = append(res.Indicators, VitalFinding{
				Vital: bound.Name, Value: value, Condition: ConditionCriticallyHigh,
			})
			res.Score += r.Weights.AbnormalVital
		}
	}

	for name := range vitals {
		if !r.hasVitalBound(name) {
			res.UnknownSignals = append(res.UnknownSignals, name)
		}
	}

	res.Urgency = r.scoreToSeverity(res.Score)
	res.IsEmergency = res.Score >= r.Weights.HighScore
	res.RecommendedAction = r.recommendedAction(res.Score)
	return res
}

func (r *Reference) hasVitalBound(name string) bool {
	for _, b := range r.VitalBounds {
		if b.Name == name {
			return true
		}
	}
	return false
}

func (r *Reference) scoreToSeverity(score int) Severity {
	switch {
	case score >= r.Weights.CriticalScore:
		return SeverityCritical
	case score >= r.Weights.HighScore:
		return SeverityHigh
	case score >= r.Weights.MediumScore:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (r *Reference) recommendedAction(score int) string {
	switch {
	case score >= r.Weights.CriticalScore:
		return "Call emergency services immediately"
	case score >= r.Weights.HighScore:
		return "Seek immediate medical attention"
	case score >= r.Weights.MediumScore:
		return "Contact healthcare provider"
	default:
		return "Continue monitoring"
	}
}

// LabStatus classifies a lab value against its normal range.
type LabStatus string

const (
	LabLow    LabStatus = "low"
	LabNormal LabStatus = "normal"
	LabHigh   LabStatus = "high"
)

// LabGrade is the severity grading of an abnormal lab value.
type LabGrade string

const (
	GradeMild     LabGrade = "mild"
	GradeModerate LabGrade = "moderate"
	GradeSevere   LabGrade = "severe"
)

// LabFinding is the evaluation of one lab value.
type LabFinding struct {
	Test        string    `json:"test"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Status      LabStatus `json:"status"`
	Grade       LabGrade  `json:"grade,omitempty"`
	Demographic string    `json:"demographic"`
	Low         float64   `json:"range_low"`
	High        float64   `json:"range_high"`
}

// ErrUnknownLabTest is returned when a lab value names a test the reference
// tables do not know.
var ErrUnknownLabTest = errors.New("unknown lab test")

// EvaluateLabValue grades a single lab value. The demographic range is chosen
// by exact match, then a range named "general", then the first declared range
// of the test. Values inside the range are normal; outside, the status is
// low/high and the grade comes from the test's severe cutoffs.
func (r *Reference) EvaluateLabValue(test string, value float64, demographic string) (*LabFinding, error) {
	lt := r.labTest(test)
	if lt == nil {
		return nil, ErrUnknownLabTest
	}

	rng := lt.pickRange(demographic)
	finding := &LabFinding{
		Test:        lt.Name,
		Value:       value,
		Unit:        lt.Unit,
		Demographic: rng.Demographic,
		Low:         rng.Low,
		High:        rng.High,
	}

	switch {
	case value < rng.Low:
		finding.Status = LabLow
	case value > rng.High:
		finding.Status = LabHigh
	default:
		finding.Status = LabNormal
		return finding, nil
	}

	finding.Grade = lt.grade(value, finding.Status)
	return finding, nil
}

// pickRange resolves the demographic fallback chain: exact match, "general",
// then the first declared range.
func (t *LabTest) pickRange(demographic string) DemographicRange {
	for _, rg := range t.Ranges {
		if rg.Demographic == demographic {
			return rg
		}
	}
	for _, rg := range t.Ranges {
		if rg.Demographic == "general" {
			return rg
		}
	}
	return t.Ranges[0]
}

func (t *LabTest) grade(value float64, status LabStatus) LabGrade {
	if t.SevereBelow == nil && t.SevereAbove == nil {
		return GradeMild
	}
	if status == LabLow && t.SevereBelow != nil && value < *t.SevereBelow {
		return GradeSevere
	}
	if status == LabHigh && t.SevereAbove != nil && value > *t.SevereAbove {
		return GradeSevere
	}
	return GradeModerate
}

// BPStage is the blood pressure staging classification.
type BPStage string

const (
	BPNormal   BPStage = "normal"
	BPElevated BPStage = "elevated"
	BPStage1   BPStage = "stage_1_hypertension"
	BPStage2   BPStage = "stage_2_hypertension"
)

// StageBloodPressure classifies a reading: below 120/80 is normal, systolic
// under 130 with diastolic under 80 is elevated, either value under 140/90 is
// stage 1, everything else stage 2.
func StageBloodPressure(systolic, diastolic int) BPStage {
	switch {
	case systolic < 120 && diastolic < 80:
		return BPNormal
	case systolic < 130 && diastolic < 80:
		return BPElevated
	case systolic < 140 || diastolic < 90:
		return BPStage1
	default:
		return BPStage2
	}
}
