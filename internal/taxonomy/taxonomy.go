// Package taxonomy holds the ESG field taxonomy and its lookup structures.
//
// The taxonomy is organised as:
// - Pillar (Environmental, Social, Governance)
// - Issue (e.g. Water Management, Air Quality)
// - Sub-Issue (e.g. Water Consumption, Air Emissions)
// - Field (individual metrics, addressed by a unique code such as "SR362")
//
// An Index is built once and is read-only afterwards, so it may be shared by
// any number of conversation sessions without locking.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/steveyegge/esgmatch/internal/textutil"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Record is a post-parse taxonomy row as supplied by a source loader
type Record struct {
	FieldID           string `json:"field_id"`
	FieldName         string `json:"field_name"`
	FieldType         string `json:"field_type"`
	Pillar            string `json:"pillar"`
	Issue             string `json:"issue"`
	SubIssue          string `json:"sub_issue"`
	UnderlyingFieldID string `json:"underlying_field_id"`
	SourceFile        string `json:"source_file,omitempty"`
}

// Index provides O(1) lookups over a loaded set of fields
type Index struct {
	version string
	source  string

	fields   []types.Field
	byID     map[string]int
	byPillar map[string][]int
	byIssue  map[string][]int
}

// Option configures index metadata
type Option func(*Index)

// WithVersion records the taxonomy version
func WithVersion(v string) Option {
	return func(idx *Index) { idx.version = v }
}

// WithSource records where the taxonomy came from
func WithSource(s string) Option {
	return func(idx *Index) { idx.source = s }
}

// Load builds an index from records in a single pass.
//
// Every record needs a non-empty field_id and pillar, and field IDs must be unique;
// otherwise a *MalformedRecordError is returned and no index is built.
func Load(records []Record, opts ...Option) (*Index, error) {
	idx := &Index{
		version:  "1.0",
		source:   "unknown",
		fields:   make([]types.Field, 0, len(records)),
		byID:     make(map[string]int, len(records)),
		byPillar: make(map[string][]int),
		byIssue:  make(map[string][]int),
	}
	for _, opt := range opts {
		opt(idx)
	}

	for i, rec := range records {
		f := newField(rec)
		if f.FieldID == "" {
			return nil, &MalformedRecordError{Position: i, Reason: "missing field_id"}
		}
		if f.Pillar == "" {
			return nil, &MalformedRecordError{Position: i, FieldID: f.FieldID, Reason: "missing pillar"}
		}
		if _, dup := idx.byID[f.FieldID]; dup {
			return nil, &MalformedRecordError{Position: i, FieldID: f.FieldID, Reason: "duplicate field_id"}
		}

		pos := len(idx.fields)
		idx.fields = append(idx.fields, f)
		idx.byID[f.FieldID] = pos
		idx.byPillar[f.Pillar] = append(idx.byPillar[f.Pillar], pos)
		if f.Issue != "" {
			idx.byIssue[f.Issue] = append(idx.byIssue[f.Issue], pos)
		}
	}

	return idx, nil
}

func newField(rec Record) types.Field {
	f := types.Field{
		FieldID:           strings.TrimSpace(rec.FieldID),
		FieldName:         strings.TrimSpace(rec.FieldName),
		FieldType:         types.ParseFieldType(rec.FieldType),
		Pillar:            strings.TrimSpace(rec.Pillar),
		Issue:             strings.TrimSpace(rec.Issue),
		SubIssue:          strings.TrimSpace(rec.SubIssue),
		UnderlyingFieldID: strings.TrimSpace(rec.UnderlyingFieldID),
		SourceFile:        strings.TrimSpace(rec.SourceFile),
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{f.FieldName, f.Issue, f.SubIssue, f.Pillar} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	f.SearchText = textutil.Fold(strings.Join(parts, " "))
	return f
}

// Version returns the taxonomy version label
func (idx *Index) Version() string { return idx.version }

// Source returns the taxonomy source label
func (idx *Index) Source() string { return idx.source }

// Len returns the number of loaded fields
func (idx *Index) Len() int { return len(idx.fields) }

// Fields returns every field in load order
func (idx *Index) Fields() []types.Field {
	out := make([]types.Field, len(idx.fields))
	copy(out, idx.fields)
	return out
}

// GetField returns the field with the given ID or a *NotFoundError
func (idx *Index) GetField(fieldID string) (types.Field, error) {
	pos, ok := idx.byID[fieldID]
	if !ok {
		return types.Field{}, &NotFoundError{FieldID: fieldID}
	}
	return idx.fields[pos], nil
}

// Has reports whether the index holds fieldID
func (idx *Index) Has(fieldID string) bool {
	_, ok := idx.byID[fieldID]
	return ok
}

// FieldsByIssue returns the fields of an issue in load order (not sorted)
func (idx *Index) FieldsByIssue(issue string) []types.Field {
	return idx.collect(idx.byIssue[issue])
}

// FieldsByPillar returns the fields of a pillar in load order (not sorted)
func (idx *Index) FieldsByPillar(pillar string) []types.Field {
	return idx.collect(idx.byPillar[pillar])
}

func (idx *Index) collect(positions []int) []types.Field {
	out := make([]types.Field, 0, len(positions))
	for _, pos := range positions {
		out = append(out, idx.fields[pos])
	}
	return out
}

// AllPillars returns the distinct pillar names, sorted
func (idx *Index) AllPillars() []string {
	return sortedKeys(idx.byPillar)
}

// AllIssues returns the distinct issue names, sorted
func (idx *Index) AllIssues() []string {
	return sortedKeys(idx.byIssue)
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Search returns up to limit fields whose search text contains query (case-folded).
// A limit <= 0 means no limit.
func (idx *Index) Search(query string, limit int) []types.Field {
	q := textutil.Fold(query)
	var out []types.Field
	for _, f := range idx.fields {
		if strings.Contains(f.SearchText, q) {
			out = append(out, f)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Stats summarises the index
type Stats struct {
	TotalFields  int      `json:"total_fields"`
	TotalPillars int      `json:"total_pillars"`
	TotalIssues  int      `json:"total_issues"`
	Pillars      []string `json:"pillars"`
	Issues       []string `json:"issues"`
}

// Stats returns field, pillar and issue counts
func (idx *Index) Stats() Stats {
	return Stats{
		TotalFields:  len(idx.fields),
		TotalPillars: len(idx.byPillar),
		TotalIssues:  len(idx.byIssue),
		Pillars:      idx.AllPillars(),
		Issues:       idx.AllIssues(),
	}
}
