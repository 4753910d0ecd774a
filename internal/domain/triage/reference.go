package triage

import (
	"encoding/json"
	"fmt"
	"os"
)

// Weights holds the tunable scoring parameters of the evaluator. Keeping them
// in one place lets deployments adjust thresholds without a rebuild via the
// reference file override.
type Weights struct {
	// AbnormalVital is added to the emergency score for every vital outside
	// its bounds.
	AbnormalVital int `json:"abnormal_vital"`
	// CriticalScore and below are the breakpoints mapping an emergency score
	// to an urgency level.
	CriticalScore int `json:"critical_score"`
	HighScore     int `json:"high_score"`
	MediumScore   int `json:"medium_score"`
	// UrgentPainScore is the self-reported severity (1-10) at which symptom
	// urgency jumps to high; ModeratePainScore maps to medium.
	UrgentPainScore   int `json:"urgent_pain_score"`
	ModeratePainScore int `json:"moderate_pain_score"`
}

// Category describes one symptom category: the keywords that map free text to
// it, the keywords that escalate urgency, and the canned clinical content
// returned with a match.
type Category struct {
	Name            string   `json:"name"`
	Keywords        []string `json:"keywords"`
	UrgencyKeywords []string `json:"urgency_keywords"`
	Conditions      []string `json:"conditions"`
	Recommendations []string `json:"recommendations"`
}

// DemographicRange is one (demographic, low, high) row of a lab test's normal
// ranges. Declaration order matters: when neither an exact demographic match
// nor a "general" row exists, the first declared row is the fallback.
type DemographicRange struct {
	Demographic string  `json:"demographic"`
	Low         float64 `json:"low"`
	High        float64 `json:"high"`
}

// LabTest describes one laboratory test: the extraction pattern, its unit,
// the ordered demographic ranges, and optional severe cutoffs. Tests without
// cutoffs grade abnormal values as mild; with cutoffs, beyond-cutoff values
// grade severe and the rest moderate.
type LabTest struct {
	Name        string             `json:"name"`
	Pattern     string             `json:"pattern"`
	Unit        string             `json:"unit"`
	Ranges      []DemographicRange `json:"ranges"`
	SevereBelow *float64           `json:"severe_below,omitempty"`
	SevereAbove *float64           `json:"severe_above,omitempty"`
}

// VitalBound is the emergency envelope for one vital sign.
type VitalBound struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Reference bundles all evaluator configuration. It is loaded once at startup
// and treated as immutable afterwards.
type Reference struct {
	Categories  []Category   `json:"categories"`
	LabTests    []LabTest    `json:"lab_tests"`
	VitalBounds []VitalBound `json:"vital_bounds"`
	Weights     Weights      `json:"weights"`
}

func f64(v float64) *float64 { return &v }

// DefaultReference returns the compiled-in reference tables.
func DefaultReference() *Reference {
	return &Reference{
		Weights: Weights{
			AbnormalVital:     3,
			CriticalScore:     6,
			HighScore:         3,
			MediumScore:       1,
			UrgentPainScore:   8,
			ModeratePainScore: 6,
		},
		Categories: []Category{
			{
				Name: "cardiovascular",
				Keywords: []string{
					"chest pain", "heart pain", "shortness of breath", "palpitations",
					"irregular heartbeat", "fatigue", "dizziness", "swelling legs",
					"high blood pressure", "chest tightness", "rapid heartbeat",
				},
				UrgencyKeywords: []string{"chest pain", "heart attack", "severe shortness of breath"},
				Conditions:      []string{"Hypertension", "Coronary Artery Disease", "Heart Arrhythmia", "Heart Failure"},
				Recommendations: []string{
					"Monitor blood pressure regularly",
					"Maintain a heart-healthy diet",
					"Exercise regularly as recommended by doctor",
					"Avoid smoking and excessive alcohol",
				},
			},
			{
				Name: "respiratory",
				Keywords: []string{
					"cough", "shortness of breath", "wheezing", "chest tightness",
					"difficulty breathing", "sputum", "fever", "throat pain",
					"runny nose", "congestion", "asthma", "pneumonia symptoms",
				},
				UrgencyKeywords: []string{"severe difficulty breathing", "chest pain", "high fever"},
				Conditions:      []string{"Asthma", "Pneumonia", "Bronchitis", "COPD"},
				Recommendations: []string{
					"Avoid respiratory irritants",
					"Use prescribed inhalers as directed",
					"Stay hydrated",
					"Get adequate rest",
				},
			},
			{
				Name: "diabetes",
				Keywords: []string{
					"frequent urination", "excessive thirst", "unexplained weight loss",
					"fatigue", "blurred vision", "slow healing wounds", "tingling hands",
					"tingling feet", "increased hunger", "high blood sugar",
				},
				UrgencyKeywords: []string{"very high blood sugar", "diabetic ketoacidosis", "severe dehydration"},
				Conditions:      []string{"Type 2 Diabetes", "Pre-diabetes", "Diabetic Complications"},
				Recommendations: []string{
					"Monitor blood sugar levels",
					"Follow diabetic diet plan",
					"Take medications as prescribed",
					"Regular exercise",
				},
			},
			{
				Name: "neurological",
				Keywords: []string{
					"headache", "dizziness", "confusion", "memory loss", "seizures",
					"numbness", "weakness", "tremors", "balance problems",
					"speech difficulties", "vision problems", "coordination issues",
				},
				UrgencyKeywords: []string{"severe headache", "confusion", "seizure", "stroke symptoms"},
				Conditions:      []string{"Migraine", "Tension Headache", "Neurological Disorder"},
				Recommendations: []string{
					"Keep a symptom diary",
					"Avoid known triggers",
					"Get adequate sleep",
					"Manage stress levels",
				},
			},
			{
				Name: "gastrointestinal",
				Keywords: []string{
					"nausea", "vomiting", "diarrhea", "constipation", "abdominal pain",
					"bloating", "heartburn", "loss of appetite", "weight loss",
					"blood in stool", "stomach pain", "indigestion",
				},
				UrgencyKeywords: []string{"severe abdominal pain", "blood in vomit", "severe dehydration"},
				Conditions:      []string{"Gastritis", "IBS", "Food Poisoning", "Peptic Ulcer"},
				Recommendations: []string{
					"Stay hydrated",
					"Eat bland, easy-to-digest foods",
					"Avoid spicy and fatty foods",
					"Rest and avoid stress",
				},
			},
			{
				Name: "musculoskeletal",
				Keywords: []string{
					"joint pain", "muscle pain", "stiffness", "swelling joints",
					"limited range of motion", "back pain", "neck pain",
					"muscle weakness", "bone pain", "arthritis symptoms",
				},
				UrgencyKeywords: []string{"severe pain", "inability to move", "severe swelling"},
				Conditions:      []string{"Arthritis", "Muscle Strain", "Joint Inflammation"},
				Recommendations: []string{
					"Rest affected area",
					"Apply ice or heat as appropriate",
					"Gentle stretching exercises",
					"Anti-inflammatory medications if recommended",
				},
			},
		},
		LabTests: []LabTest{
			{
				Name:    "hemoglobin",
				Pattern: `(?:hemoglobin|hgb|hb)[\s:]*(\d+\.?\d*)\s*(?:g/dl|g/l)?`,
				Unit:    "g/dL",
				Ranges: []DemographicRange{
					{Demographic: "male", Low: 13.8, High: 17.2},
					{Demographic: "female", Low: 12.1, High: 15.1},
				},
				SevereBelow: f64(8.0),
				SevereAbove: f64(20.0),
			},
			{
				Name:    "glucose",
				Pattern: `(?:glucose|blood sugar)[\s:]*(\d+\.?\d*)\s*(?:mg/dl|mmol/l)?`,
				Unit:    "mg/dL",
				Ranges: []DemographicRange{
					{Demographic: "fasting", Low: 70, High: 100},
					{Demographic: "random", Low: 70, High: 140},
				},
				SevereBelow: f64(50.0),
				SevereAbove: f64(300.0),
			},
			{
				Name:    "cholesterol",
				Pattern: `(?:total cholesterol|cholesterol)[\s:]*(\d+\.?\d*)\s*(?:mg/dl)?`,
				Unit:    "mg/dL",
				Ranges: []DemographicRange{
					{Demographic: "total", Low: 0, High: 200},
				},
			},
			{
				Name:    "creatinine",
				Pattern: `(?:creatinine|creat)[\s:]*(\d+\.?\d*)\s*(?:mg/dl)?`,
				Unit:    "mg/dL",
				Ranges: []DemographicRange{
					{Demographic: "male", Low: 0.7, High: 1.3},
					{Demographic: "female", Low: 0.6, High: 1.1},
				},
				SevereBelow: f64(0.3),
				SevereAbove: f64(3.0),
			},
			{
				Name:    "white_blood_cell",
				Pattern: `(?:wbc|white blood cell)[\s:]*(\d+\.?\d*)\s*(?:k/ul|x10\^3)?`,
				Unit:    "K/uL",
				Ranges: []DemographicRange{
					{Demographic: "general", Low: 4.5, High: 11.0},
				},
			},
		},
		VitalBounds: []VitalBound{
			{Name: "heart_rate", Min: 50, Max: 120},
			{Name: "blood_pressure_systolic", Min: 90, Max: 180},
			{Name: "blood_pressure_diastolic", Min: 60, Max: 110},
			{Name: "temperature", Min: 96.0, Max: 102.0},
			{Name: "oxygen_saturation", Min: 90, Max: 100},
		},
	}
}

// LoadFile reads a JSON reference file. Sections present in the file replace
// the corresponding defaults wholesale; absent sections keep the defaults.
func LoadFile(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file %s: %w", path, err)
	}

	ref := DefaultReference()
	var override struct {
		Categories  []Category   `json:"categories"`
		LabTests    []LabTest    `json:"lab_tests"`
		VitalBounds []VitalBound `json:"vital_bounds"`
		Weights     *Weights     `json:"weights"`
	}
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse reference file %s: %w", path, err)
	}

	if len(override.Categories) > 0 {
		ref.Categories = override.Categories
	}
	if len(override.LabTests) > 0 {
		ref.LabTests = override.LabTests
	}
	if len(override.VitalBounds) > 0 {
		ref.VitalBounds = override.VitalBounds
	}
	if override.Weights != nil {
		ref.Weights = *override.Weights
	}

	if err := ref.validate(); err != nil {
		return nil, fmt.Errorf("reference file %s: %w", path, err)
	}
	return ref, nil
}

func (r *Reference) validate() error {
	w := r.Weights
	if w.AbnormalVital <= 0 {
		return fmt.Errorf("weights: abnormal_vital must be positive, got %d", w.AbnormalVital)
	}
	if w.MediumScore <= 0 || w.HighScore <= w.MediumScore || w.CriticalScore <= w.HighScore {
		return fmt.Errorf("weights: score breakpoints must satisfy 0 < medium < high < critical, got %d/%d/%d",
			w.MediumScore, w.HighScore, w.CriticalScore)
	}
	if w.UrgentPainScore <= w.ModeratePainScore {
		return fmt.Errorf("weights: urgent_pain_score %d must exceed moderate_pain_score %d",
			w.UrgentPainScore, w.ModeratePainScore)
	}
	for _, c := range r.Categories {
		if c.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if len(c.Keywords) == 0 {
			return fmt.Errorf("category %s has no keywords", c.Name)
		}
	}
	for _, t := range r.LabTests {
		if len(t.Ranges) == 0 {
			return fmt.Errorf("lab test %s has no ranges", t.Name)
		}
		for _, rg := range t.Ranges {
			if rg.Low > rg.High {
				return fmt.Errorf("lab test %s range %s has low > high", t.Name, rg.Demographic)
			}
		}
	}
	for _, v := range r.VitalBounds {
		if v.Min > v.Max {
			return fmt.Errorf("vital bound %s has min > max", v.Name)
		}
	}
	return nil
}

// category returns the category with the given name, or nil.
func (r *Reference) category(name string) *Category {
	for i := range r.Categories {
		if r.Categories[i].Name == name {
			return &r.Categories[i]
		}
	}
	return nil
}

// labTest returns the lab test with the given name, or nil.
func (r *Reference) labTest(name string) *LabTest {
	for i := range r.LabTests {
		if r.LabTests[i].Name == name {
			return &r.LabTests[i]
		}
	}
	return nil
}
