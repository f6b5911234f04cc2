package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeHighUrgencyGICombo(t *testing.T) {
	r := Responses{
		Symptoms: Symptoms{Vomiting: true, Diarrhea: true},
		Duration: Duration{GettingWorse: true},
	}
	result := Summarize(PetInfo{Name: "Rex", Species: "Dog"}, r)
	assert.Equal(t, UrgencyHigh, result.Urgency)
	assert.Contains(t, result.Summary, "Active symptoms: vomiting, diarrhea")
	assert.Contains(t, result.Summary, "Condition is worsening")
}

func TestSummarizeHighUrgencyLethargyCombo(t *testing.T) {
	r := Responses{
		GeneralHealth: GeneralHealth{Energy: "Very Low", Appetite: "No appetite"},
	}
	result := Summarize(PetInfo{}, r)
	assert.Equal(t, UrgencyHigh, result.Urgency)
}

func TestSummarizeMediumByDefault(t *testing.T) {
	tests := []struct {
		name string
		r    Responses
	}{
		{"empty responses", Responses{}},
		{"vomiting without trend", Responses{Symptoms: Symptoms{Vomiting: true, Diarrhea: true}}},
		{"worsening without GI combo", Responses{Symptoms: Symptoms{Vomiting: true}, Duration: Duration{GettingWorse: true}}},
		{"low energy with appetite", Responses{GeneralHealth: GeneralHealth{Energy: "Very Low", Appetite: "Normal"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, UrgencyMedium, Summarize(PetInfo{}, tt.r).Urgency)
		})
	}
}

func TestSummarizeNeverComputesLowOrEmergency(t *testing.T) {
	// Exhaustive over the fields the classifier reads.
	for _, vomiting := range []bool{false, true} {
		for _, diarrhea := range []bool{false, true} {
			for _, worse := range []bool{false, true} {
				for _, energy := range []string{"", "Normal", "Very Low"} {
					for _, appetite := range []string{"", "Normal", "No appetite"} {
						r := Responses{
							Symptoms:      Symptoms{Vomiting: vomiting, Diarrhea: diarrhea},
							Duration:      Duration{GettingWorse: worse},
							GeneralHealth: GeneralHealth{Energy: energy, Appetite: appetite},
						}
						got := Summarize(PetInfo{}, r).Urgency
						if got != UrgencyMedium && got != UrgencyHigh {
							t.Fatalf("unexpected urgency %q for %+v", got, r)
						}
					}
				}
			}
		}
	}
}

func TestSummarizeHeaderPlaceholders(t *testing.T) {
	result := Summarize(PetInfo{}, Responses{})
	assert.True(t, strings.HasPrefix(result.Summary, "Pet: Unknown (Unknown, Unknown, Unknown years old)\n"),
		"summary should open with a placeholder header, got %q", result.Summary)
	assert.Contains(t, result.Summary, "CHIEF COMPLAINTS:")
	assert.Contains(t, result.Summary, "- Appetite: Unknown")
	assert.Contains(t, result.Summary, "- Energy level: Unknown")
	assert.Contains(t, result.Summary, "- Duration: Unknown")
	assert.Contains(t, result.Summary, "MEDICAL HISTORY:")
	assert.Contains(t, result.Summary, "- Vaccination status: Not up to date")
}

func TestSummarizeSymptomVocabularyOrder(t *testing.T) {
	r := Responses{
		Symptoms: Symptoms{
			Vomiting:   true,
			Diarrhea:   true,
			Coughing:   true,
			Sneezing:   true,
			Limping:    true,
			Scratching: true,
			Other:      "ear twitching",
		},
	}
	result := Summarize(PetInfo{Name: "Mimi"}, r)
	assert.Contains(t, result.Summary,
		"Active symptoms: vomiting, diarrhea, coughing, sneezing, limping, excessive scratching, ear twitching")
}

func TestSummarizeOmitsSymptomLineWhenNoneFlagged(t *testing.T) {
	result := Summarize(PetInfo{Name: "Rex"}, Responses{})
	assert.NotContains(t, result.Summary, "Active symptoms")
}

func TestSummarizeMedicalHistoryLines(t *testing.T) {
	r := Responses{
		MedicalHistory: MedicalHistory{
			CurrentMedications: "carprofen",
			Allergies:          "chicken",
			Vaccinated:         true,
		},
	}
	result := Summarize(PetInfo{Name: "Luna", Species: "Cat", Breed: "Siamese", Age: "4"}, r)
	assert.Contains(t, result.Summary, "Pet: Luna (Cat, Siamese, 4 years old)")
	assert.Contains(t, result.Summary, "- Current medications: carprofen")
	assert.Contains(t, result.Summary, "- Known allergies: chicken")
	assert.Contains(t, result.Summary, "- Vaccination status: Up to date")
}

func TestSummarizeDeterministic(t *testing.T) {
	pet := PetInfo{Name: "Rex", Species: "Dog", Breed: "Beagle", Age: "7"}
	r := Responses{
		Symptoms:      Symptoms{Coughing: true, Sneezing: true},
		GeneralHealth: GeneralHealth{Appetite: "Reduced", Energy: "Normal"},
		Duration:      Duration{SymptomsStarted: "3 days ago"},
	}
	first := Summarize(pet, r)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Summarize(pet, r))
	}
}
