package matcher

import (
	"fmt"
)

// Weights are the additive points awarded per scoring rule
type Weights struct {
	ExactName float64 `yaml:"exact_name"` // field name appears verbatim in the utterance
	NameWord  float64 `yaml:"name_word"`  // per content word shared with the field name
	Issue     float64 `yaml:"issue"`      // utterance contains the issue name
	SubIssue  float64 `yaml:"sub_issue"`  // utterance contains the sub-issue name
	Pillar    float64 `yaml:"pillar"`     // utterance contains the pillar name
}

// Theme boosts fields whose name carries one of FieldMarkers when the utterance
// contains one of Keywords. The bonus is applied once per theme, however many
// keywords match.
type Theme struct {
	Name         string   `yaml:"name"`
	Keywords     []string `yaml:"keywords"`
	FieldMarkers []string `yaml:"field_markers"`
	Bonus        float64  `yaml:"bonus"`
}

// Disambiguation separates a broad theme from a narrow field that shares a short
// code with it (e.g. "CO" for carbon monoxide vs. carbon dioxide emissions).
//
// - a broad hit (BroadPhrases, or every word of a BroadCooccurrence group when no
//   narrow phrase is present) adds BroadBonus to fields carrying a BroadMarker
// - a narrow hit (NarrowPhrases, or a NarrowAbbreviations token without a broad hit)
//   adds NarrowBonus to fields carrying a NarrowMarker
// - a broad hit together with only an abbreviation hit subtracts SuppressPenalty
//   from narrow fields
type Disambiguation struct {
	Name                string     `yaml:"name"`
	BroadPhrases        []string   `yaml:"broad_phrases"`
	BroadCooccurrence   [][]string `yaml:"broad_cooccurrence"`
	BroadMarkers        []string   `yaml:"broad_markers"`
	BroadBonus          float64    `yaml:"broad_bonus"`
	NarrowPhrases       []string   `yaml:"narrow_phrases"`
	NarrowAbbreviations []string   `yaml:"narrow_abbreviations"`
	NarrowMarkers       []string   `yaml:"narrow_markers"`
	NarrowBonus         float64    `yaml:"narrow_bonus"`
	SuppressPenalty     float64    `yaml:"suppress_penalty"`
}

// Config holds matcher tuning
type Config struct {
	Weights         Weights          `yaml:"weights"`
	StopWords       []string         `yaml:"stop_words"`
	Themes          []Theme          `yaml:"themes"`
	Disambiguations []Disambiguation `yaml:"disambiguations"`
	// MinScore marks results below it as low confidence; they are still returned
	MinScore float64 `yaml:"min_score"`
}

// DefaultMinScore is the default low-confidence threshold
const DefaultMinScore = 3.0

// DefaultConfig returns the hand-tuned scoring table
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			ExactName: 10,
			NameWord:  3,
			Issue:     5,
			SubIssue:  4,
			Pillar:    2,
		},
		StopWords: DefaultStopWords(),
		Themes: []Theme{
			{
				Name:         "water",
				Keywords:     []string{"water", "freshwater", "wastewater", "contamination", "pollution"},
				FieldMarkers: []string{"water"},
				Bonus:        3,
			},
			{
				Name:         "greenhouse_gas",
				Keywords:     []string{"ghg", "greenhouse gas", "greenhouse"},
				FieldMarkers: []string{"ghg", "greenhouse", "scope 1", "scope 2", "scope 3"},
				Bonus:        5,
			},
			{
				Name:         "energy",
				Keywords:     []string{"energy", "renewable", "electricity", "fuel"},
				FieldMarkers: []string{"energy", "electricity"},
				Bonus:        3,
			},
			{
				Name:         "waste",
				Keywords:     []string{"waste", "recycling", "landfill", "hazardous"},
				FieldMarkers: []string{"waste"},
				Bonus:        3,
			},
			{
				Name:         "biodiversity",
				Keywords:     []string{"biodiversity", "nature", "ecosystem", "habitat", "species"},
				FieldMarkers: []string{"biodiversity", "natural capital", "habitat"},
				Bonus:        3,
			},
		},
		Disambiguations: []Disambiguation{
			{
				Name:                "carbon",
				BroadPhrases:        []string{"carbon dioxide", "co2"},
				BroadCooccurrence:   [][]string{{"carbon", "emissions"}},
				BroadMarkers:        []string{"carbon dioxide", "co2", "greenhouse", "ghg", "scope 1", "scope 2", "scope 3"},
				BroadBonus:          5,
				NarrowPhrases:       []string{"carbon monoxide"},
				NarrowAbbreviations: []string{"co"},
				NarrowMarkers:       []string{"carbon monoxide"},
				NarrowBonus:         5,
				SuppressPenalty:     5,
			},
		},
		MinScore: DefaultMinScore,
	}
}

// DefaultStopWords returns words ignored by the word-overlap rule
func DefaultStopWords() []string {
	return []string{
		"a", "about", "am", "an", "and", "are", "as", "at", "be", "by", "do", "does",
		"for", "from", "has", "have", "how", "i", "in", "is", "it", "its", "m", "me",
		"my", "of", "on", "or", "our", "s", "so", "t", "that", "the", "their", "this", "to", "us",
		"very", "was", "we", "what", "which", "with", "you", "your",
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"exact_name": w.ExactName, "name_word": w.NameWord, "issue": w.Issue,
		"sub_issue": w.SubIssue, "pillar": w.Pillar,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must be non-negative (got %v)", name, v)
		}
	}
	if c.MinScore < 0 {
		return fmt.Errorf("min_score must be non-negative (got %v)", c.MinScore)
	}
	for i, th := range c.Themes {
		if th.Name == "" {
			return fmt.Errorf("theme %d: name is required", i)
		}
		if len(th.Keywords) == 0 || len(th.FieldMarkers) == 0 {
			return fmt.Errorf("theme %s: keywords and field_markers are required", th.Name)
		}
		if th.Bonus <= 0 {
			return fmt.Errorf("theme %s: bonus must be positive (got %v)", th.Name, th.Bonus)
		}
	}
	for i, d := range c.Disambiguations {
		if d.Name == "" {
			return fmt.Errorf("disambiguation %d: name is required", i)
		}
		if len(d.BroadMarkers) == 0 || len(d.NarrowMarkers) == 0 {
			return fmt.Errorf("disambiguation %s: broad_markers and narrow_markers are required", d.Name)
		}
		if d.BroadBonus < 0 || d.NarrowBonus < 0 || d.SuppressPenalty < 0 {
			return fmt.Errorf("disambiguation %s: bonuses and penalty must be non-negative", d.Name)
		}
	}
	return nil
}
