package types

import (
	"fmt"
	"strings"
)

// Field is one entry of the ESG taxonomy, addressed by a unique code.
// Fields are created in bulk when the taxonomy is loaded and never mutated afterwards.
type Field struct {
	FieldID           string    `json:"field_id"`
	FieldName         string    `json:"field_name"`
	FieldType         FieldType `json:"field_type"`
	Pillar            string    `json:"pillar"`
	Issue             string    `json:"issue"`
	SubIssue          string    `json:"sub_issue,omitempty"`           // empty when the field has no sub-issue
	UnderlyingFieldID string    `json:"underlying_field_id,omitempty"` // empty when not derived from another field
	SourceFile        string    `json:"source_file,omitempty"`
	SearchText        string    `json:"search_text"` // lower-cased name + hierarchy labels, built at load
}

// HasSubIssue reports whether the field sits under a sub-issue
func (f Field) HasSubIssue() bool {
	return f.SubIssue != ""
}

// FieldType is the level of a taxonomy row
type FieldType string

const (
	FieldTypeHeadline FieldType = "Headline"
	FieldTypePillar   FieldType = "Pillar"
	FieldTypeIssue    FieldType = "Issue"
	FieldTypeSubIssue FieldType = "SubIssue"
	FieldTypeField    FieldType = "Field"
)

// IsValid checks if the field type value is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeHeadline, FieldTypePillar, FieldTypeIssue, FieldTypeSubIssue, FieldTypeField:
		return true
	}
	return false
}

// ParseFieldType maps the loose spellings found in taxonomy sources ("Sub-Issue",
// "sub issue", "FIELD", ...) onto a FieldType. Empty or unrecognised values are Field.
func ParseFieldType(s string) FieldType {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "headline":
		return FieldTypeHeadline
	case "pillar":
		return FieldTypePillar
	case "issue":
		return FieldTypeIssue
	case "subissue":
		return FieldTypeSubIssue
	default:
		return FieldTypeField
	}
}

// Importance is how much a user cares about a recorded field
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// AllImportances lists every importance level from most to least important
func AllImportances() []Importance {
	return []Importance{ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow}
}

// IsValid checks if the importance value is valid
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// ParseImportance parses a case-insensitive importance name
func ParseImportance(s string) (Importance, error) {
	imp := Importance(strings.ToLower(strings.TrimSpace(s)))
	if !imp.IsValid() {
		return "", fmt.Errorf("invalid importance: %q (want critical, high, medium or low)", s)
	}
	return imp, nil
}

// InterestLevel is the interest classifier's verdict for a topic
type InterestLevel string

const (
	InterestHigh      InterestLevel = "HIGH"
	InterestMedium    InterestLevel = "MEDIUM"
	InterestLow       InterestLevel = "LOW"
	InterestUncertain InterestLevel = "UNCERTAIN"
)

// IsValid checks if the interest level value is valid
func (l InterestLevel) IsValid() bool {
	switch l {
	case InterestHigh, InterestMedium, InterestLow, InterestUncertain:
		return true
	}
	return false
}

// ParseInterestLevel parses a case-insensitive interest level name
func ParseInterestLevel(s string) (InterestLevel, error) {
	lvl := InterestLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !lvl.IsValid() {
		return "", fmt.Errorf("invalid interest level: %q", s)
	}
	return lvl, nil
}

// TopicKind distinguishes pillar introductions from issue topics
type TopicKind string

const (
	TopicPillarIntro TopicKind = "pillar_intro"
	TopicIssue       TopicKind = "issue"
)
