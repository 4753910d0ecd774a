package triage

import (
	"math"
	"strings"
)

// Default vital values substituted when a reading is absent or unusable.
const (
	DefaultHeartRate   = 70.0
	DefaultSystolic    = 120.0
	DefaultDiastolic   = 80.0
	DefaultTemperature = 98.6
)

// Observation is the normalized form of a patient's free-text symptoms and
// numeric vitals. Extraction never fails; unusable input is replaced with the
// documented defaults and flagged via Degraded so callers can tell a genuine
// "nothing abnormal" from "input could not be read".
type Observation struct {
	Text         string             `json:"text"`
	CategoryHits map[string]int     `json:"category_hits"`
	Vitals       map[string]float64 `json:"vitals"`
	Degraded     bool               `json:"degraded"`
}

// Extract normalizes free text and vitals into an Observation. Text is
// case-folded and matched against every category's keyword list; vitals are
// copied with defaults substituted for missing or malformed readings.
func (r *Reference) Extract(text string, vitals map[string]float64) Observation {
	obs := Observation{
		Text:         strings.ToLower(strings.TrimSpace(text)),
		CategoryHits: make(map[string]int, len(r.Categories)),
		Vitals:       make(map[string]float64, len(vitals)+4),
	}

	for _, c := range r.Categories {
		hits := 0
		for _, kw := range c.Keywords {
			if strings.Contains(obs.Text, kw) {
				hits++
			}
		}
		obs.CategoryHits[c.Name] = hits
	}

	defaults := map[string]float64{
		"heart_rate":               DefaultHeartRate,
		"blood_pressure_systolic":  DefaultSystolic,
		"blood_pressure_diastolic": DefaultDiastolic,
		"temperature":              DefaultTemperature,
	}

	for name, v := range vitals {
		if !usableVital(v) {
			obs.Degraded = true
			if d, ok := defaults[name]; ok {
				obs.Vitals[name] = d
			}
			continue
		}
		obs.Vitals[name] = v
	}

	for name, d := range defaults {
		if _, ok := obs.Vitals[name]; !ok {
			obs.Vitals[name] = d
		}
	}

	return obs
}

func usableVital(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
