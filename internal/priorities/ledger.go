// Package priorities records which taxonomy fields a user cares about and how much.
package priorities

import (
	"fmt"
	"time"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Entry is one recorded priority
type Entry struct {
	FieldID    string           `json:"field_id"`
	Importance types.Importance `json:"importance"`
	SourceText string           `json:"source_text"` // verbatim user statement
	Notes      string           `json:"notes,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// FieldLookup resolves field IDs. *taxonomy.Index satisfies it.
type FieldLookup interface {
	GetField(fieldID string) (types.Field, error)
}

// Ledger holds at most one entry per field, in first-insertion order.
// A Ledger belongs to one session and is not safe for concurrent use.
type Ledger struct {
	fields  FieldLookup
	entries []Entry
	pos     map[string]int
	now     func() time.Time
}

// NewLedger creates an empty ledger validating IDs against fields
func NewLedger(fields FieldLookup) *Ledger {
	return &Ledger{
		fields: fields,
		pos:    make(map[string]int),
		now:    time.Now,
	}
}

// Add records fieldID at importance. Re-adding a field overwrites its importance,
// source text and timestamp in place (last write wins) and clears stale notes.
// Unknown field IDs fail with taxonomy.NotFoundError.
func (l *Ledger) Add(fieldID string, importance types.Importance, sourceText string) error {
	return l.AddWithNotes(fieldID, importance, sourceText, "")
}

// AddWithNotes is Add with free-form notes attached to the entry
func (l *Ledger) AddWithNotes(fieldID string, importance types.Importance, sourceText, notes string) error {
	if !importance.IsValid() {
		return fmt.Errorf("invalid importance %q for field %s", importance, fieldID)
	}
	if _, err := l.fields.GetField(fieldID); err != nil {
		return err
	}

	entry := Entry{
		FieldID:    fieldID,
		Importance: importance,
		SourceText: sourceText,
		Notes:      notes,
		Timestamp:  l.now(),
	}
	if i, ok := l.pos[fieldID]; ok {
		l.entries[i] = entry
		return nil
	}
	l.pos[fieldID] = len(l.entries)
	l.entries = append(l.entries, entry)
	return nil
}

// UpdateImportance changes the importance of an already recorded field
func (l *Ledger) UpdateImportance(fieldID string, importance types.Importance) error {
	if !importance.IsValid() {
		return fmt.Errorf("invalid importance %q for field %s", importance, fieldID)
	}
	i, ok := l.pos[fieldID]
	if !ok {
		return &taxonomy.NotFoundError{FieldID: fieldID}
	}
	l.entries[i].Importance = importance
	l.entries[i].Timestamp = l.now()
	return nil
}

// Remove deletes the entry for fieldID. Removing an absent field is a no-op.
func (l *Ledger) Remove(fieldID string) {
	i, ok := l.pos[fieldID]
	if !ok {
		return
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	delete(l.pos, fieldID)
	for j := i; j < len(l.entries); j++ {
		l.pos[l.entries[j].FieldID] = j
	}
}

// Get returns the entry for fieldID
func (l *Ledger) Get(fieldID string) (Entry, bool) {
	i, ok := l.pos[fieldID]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Has reports whether fieldID is recorded
func (l *Ledger) Has(fieldID string) bool {
	_, ok := l.pos[fieldID]
	return ok
}

// Len returns the number of recorded fields
func (l *Ledger) Len() int { return len(l.entries) }

// AllIDs returns recorded field IDs in insertion order
func (l *Ledger) AllIDs() []string {
	ids := make([]string, len(l.entries))
	for i, e := range l.entries {
		ids[i] = e.FieldID
	}
	return ids
}

// Entries returns a copy of all entries in insertion order
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByImportance returns the field IDs recorded at level, in insertion order
func (l *Ledger) ByImportance(level types.Importance) []string {
	var ids []string
	for _, e := range l.entries {
		if e.Importance == level {
			ids = append(ids, e.FieldID)
		}
	}
	return ids
}

// Summary counts entries per importance level. Every level is present.
func (l *Ledger) Summary() map[types.Importance]int {
	counts := make(map[types.Importance]int, 4)
	for _, imp := range types.AllImportances() {
		counts[imp] = 0
	}
	for _, e := range l.entries {
		counts[e.Importance]++
	}
	return counts
}
