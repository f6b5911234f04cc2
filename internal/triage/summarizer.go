// Package triage reduces a structured pre-visit health questionnaire into a
// deterministic clinical summary and an urgency tier.
package triage

import (
	"fmt"
	"strings"
)

// Urgency classifies how soon a pet should be seen.
type Urgency string

// Urgency tiers. Low and Emergency are declared for forward compatibility but
// no current rule produces them.
const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// PetInfo is the pet descriptor snapshot attached to a questionnaire.
type PetInfo struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Age     string `json:"age"`
}

// GeneralHealth covers baseline condition questions.
type GeneralHealth struct {
	Appetite    string `json:"appetite"`
	Energy      string `json:"energy"`
	Behavior    string `json:"behavior"`
	Temperature string `json:"temperature"`
}

// Symptoms holds the fixed symptom checklist plus a free-text catch-all.
type Symptoms struct {
	Vomiting   bool   `json:"vomiting"`
	Diarrhea   bool   `json:"diarrhea"`
	Coughing   bool   `json:"coughing"`
	Sneezing   bool   `json:"sneezing"`
	Limping    bool   `json:"limping"`
	Scratching bool   `json:"scratching"`
	Other      string `json:"other"`
}

// BehavioralChanges covers recent behavior shifts.
type BehavioralChanges struct {
	Aggression bool   `json:"aggression"`
	Lethargy   bool   `json:"lethargy"`
	Hiding     bool   `json:"hiding"`
	Vocalizing bool   `json:"vocalizing"`
	Other      string `json:"other"`
}

// EatingDrinking covers intake questions.
type EatingDrinking struct {
	AppetiteChange string `json:"appetite_change"`
	WaterIntake    string `json:"water_intake"`
	LastMeal       string `json:"last_meal"`
	DietType       string `json:"diet_type"`
}

// PhysicalFindings covers observable physical symptoms.
type PhysicalFindings struct {
	Swelling  string `json:"swelling"`
	Discharge string `json:"discharge"`
	Wounds    string `json:"wounds"`
	Parasites string `json:"parasites"`
}

// Duration covers symptom onset and trend.
type Duration struct {
	SymptomsStarted string `json:"symptoms_started"`
	Frequency       string `json:"frequency"`
	GettingWorse    bool   `json:"getting_worse"`
}

// MedicalHistory covers prior conditions and vaccination status.
type MedicalHistory struct {
	PreviousConditions string `json:"previous_conditions"`
	CurrentMedications string `json:"current_medications"`
	Allergies          string `json:"allergies"`
	LastVetVisit       string `json:"last_vet_visit"`
	Vaccinated         bool   `json:"vaccinated"`
	VaccinationDate    string `json:"vaccination_date"`
}

// Responses is the full structured questionnaire.
type Responses struct {
	GeneralHealth     GeneralHealth     `json:"general_health"`
	Symptoms          Symptoms          `json:"symptoms"`
	BehavioralChanges BehavioralChanges `json:"behavioral_changes"`
	EatingDrinking    EatingDrinking    `json:"eating_drinking"`
	PhysicalFindings  PhysicalFindings  `json:"physical_findings"`
	Duration          Duration          `json:"duration"`
	MedicalHistory    MedicalHistory    `json:"medical_history"`
}

// Result is the derived output of a triage run.
type Result struct {
	Summary string  `json:"summary"`
	Urgency Urgency `json:"urgency_level"`
}

// Summarize reduces questionnaire responses to a narrative summary and an
// urgency tier. It is pure and total: missing answers degrade to "Unknown"
// placeholders and an empty Responses value still yields a complete summary.
func Summarize(pet PetInfo, r Responses) Result {
	var b strings.Builder

	fmt.Fprintf(&b, "Pet: %s (%s, %s, %s years old)\n\n",
		orUnknown(pet.Name), orUnknown(pet.Species), orUnknown(pet.Breed), orUnknown(pet.Age))

	b.WriteString("CHIEF COMPLAINTS:\n")

	symptoms := activeSymptoms(r.Symptoms)
	if len(symptoms) > 0 {
		fmt.Fprintf(&b, "- Active symptoms: %s\n", strings.Join(symptoms, ", "))
	}

	fmt.Fprintf(&b, "- Appetite: %s\n", orUnknown(r.GeneralHealth.Appetite))
	fmt.Fprintf(&b, "- Energy level: %s\n", orUnknown(r.GeneralHealth.Energy))
	fmt.Fprintf(&b, "- Duration: %s\n", orUnknown(r.Duration.SymptomsStarted))

	if r.Duration.GettingWorse {
		b.WriteString("- Condition is worsening\n")
	}

	b.WriteString("\nMEDICAL HISTORY:\n")
	if r.MedicalHistory.CurrentMedications != "" {
		fmt.Fprintf(&b, "- Current medications: %s\n", r.MedicalHistory.CurrentMedications)
	}
	if r.MedicalHistory.Allergies != "" {
		fmt.Fprintf(&b, "- Known allergies: %s\n", r.MedicalHistory.Allergies)
	}
	fmt.Fprintf(&b, "- Vaccination status: %s\n", vaccinationStatus(r.MedicalHistory.Vaccinated))

	return Result{Summary: b.String(), Urgency: classify(r)}
}

// activeSymptoms lists flagged symptoms in the fixed vocabulary order, with
// the free-text "other" entry last.
func activeSymptoms(s Symptoms) []string {
	var out []string
	if s.Vomiting {
		out = append(out, "vomiting")
	}
	if s.Diarrhea {
		out = append(out, "diarrhea")
	}
	if s.Coughing {
		out = append(out, "coughing")
	}
	if s.Sneezing {
		out = append(out, "sneezing")
	}
	if s.Limping {
		out = append(out, "limping")
	}
	if s.Scratching {
		out = append(out, "excessive scratching")
	}
	if s.Other != "" {
		out = append(out, s.Other)
	}
	return out
}

// classify applies the urgency rules. Both rules are evaluated; either alone
// forces high. Everything else is medium.
func classify(r Responses) Urgency {
	urgency := UrgencyMedium
	if r.Symptoms.Vomiting && r.Symptoms.Diarrhea && r.Duration.GettingWorse {
		urgency = UrgencyHigh
	}
	if r.GeneralHealth.Energy == "Very Low" && r.GeneralHealth.Appetite == "No appetite" {
		urgency = UrgencyHigh
	}
	return urgency
}

func vaccinationStatus(vaccinated bool) string {
	if vaccinated {
		return "Up to date"
	}
	return "Not up to date"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
