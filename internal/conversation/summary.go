package conversation

import (
	"time"

	"github.com/steveyegge/esgmatch/internal/types"
)

// PriorityRow is one exported ledger entry joined with its taxonomy field
type PriorityRow struct {
	FieldID    string           `json:"field_id"`
	FieldName  string           `json:"field_name"`
	Pillar     string           `json:"pillar"`
	Issue      string           `json:"issue"`
	SubIssue   string           `json:"sub_issue"`
	Importance types.Importance `json:"importance"`
}

// ExportPriorities lists the session's ledger in insertion order
func (t *Tracker) ExportPriorities(s *Session) []PriorityRow {
	entries := s.Ledger.Entries()
	rows := make([]PriorityRow, 0, len(entries))
	for _, e := range entries {
		f, err := t.index.GetField(e.FieldID)
		if err != nil {
			// unreachable: the ledger validates IDs against the same index
			continue
		}
		rows = append(rows, PriorityRow{
			FieldID:    f.FieldID,
			FieldName:  f.FieldName,
			Pillar:     f.Pillar,
			Issue:      f.Issue,
			SubIssue:   f.SubIssue,
			Importance: e.Importance,
		})
	}
	return rows
}

// Progress is how far a session has come through the topic list
type Progress struct {
	Current    int `json:"current"` // 1-based position of the topic being discussed
	Total      int `json:"total"`
	Closed     int `json:"closed"`
	Percentage int `json:"percentage"`
}

// Progress reports closed topics against the navigator's topic list
func (t *Tracker) Progress(s *Session) Progress {
	total := t.navigator.Len()
	closed := 0
	for _, topic := range t.navigator.Topics() {
		if s.IsCommitted(topic.ID) {
			closed++
		}
	}
	p := Progress{Total: total, Closed: closed, Current: closed + 1}
	if p.Current > total {
		p.Current = total
	}
	if total > 0 {
		p.Percentage = closed * 100 / total
	}
	return p
}

// TopicInterest is one discussed topic in the interest summary
type TopicInterest struct {
	TopicID    string              `json:"topic_id"`
	Name       string              `json:"name"`
	Interest   types.InterestLevel `json:"interest"`
	Notes      string              `json:"notes,omitempty"` // the utterance that closed the topic
	Mentions   []string            `json:"mentions,omitempty"`
	Committed  bool                `json:"committed"`
	IsLooping  bool                `json:"is_looping,omitempty"`
	Negative   bool                `json:"negative,omitempty"`
	TurnsTaken int                 `json:"turns_taken"`
}

// InterestSummary groups discussed topics by their last classified interest
type InterestSummary struct {
	High           []TopicInterest `json:"high_priority"`
	Medium         []TopicInterest `json:"medium_priority"`
	Low            []TopicInterest `json:"low_priority"`
	Uncertain      []TopicInterest `json:"uncertain"`
	TopicsExplored int             `json:"topics_explored"`
	TopicsTotal    int             `json:"topics_total"`
}

// Summarize builds the interest summary in discussion order
func (t *Tracker) Summarize(s *Session) InterestSummary {
	sum := InterestSummary{TopicsTotal: t.navigator.Len()}
	for _, id := range s.order {
		lvl, ok := s.interest[id]
		if !ok {
			continue
		}
		topic := t.topic(id)
		item := TopicInterest{
			TopicID:    id,
			Name:       topic.Name,
			Interest:   lvl,
			Notes:      s.notes[id],
			Mentions:   s.Mentions(id),
			Committed:  s.IsCommitted(id),
			Negative:   s.polarity[id] == PolarityNegative,
			TurnsTaken: s.TurnCounts[id],
		}
		item.IsLooping = item.Committed && s.polarity[id] == PolarityNone
		if item.Committed {
			sum.TopicsExplored++
		}

		switch lvl {
		case types.InterestHigh:
			sum.High = append(sum.High, item)
		case types.InterestLow:
			sum.Low = append(sum.Low, item)
		case types.InterestUncertain:
			sum.Uncertain = append(sum.Uncertain, item)
		default:
			sum.Medium = append(sum.Medium, item)
		}
	}
	return sum
}

// Profile is the exportable snapshot of a session: recorded field priorities,
// the topic interest summary and how far the conversation got.
type Profile struct {
	SessionID       string          `json:"session_id"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     time.Time       `json:"completed_at"`
	TaxonomyVersion string          `json:"taxonomy_version,omitempty"`
	Priorities      []PriorityRow   `json:"priorities"`
	Summary         InterestSummary `json:"summary"`
	Progress        Progress        `json:"progress"`
}

// Profile snapshots s. The snapshot shares nothing with the session.
func (t *Tracker) Profile(s *Session) *Profile {
	return &Profile{
		SessionID:       s.ID,
		StartedAt:       s.StartedAt,
		CompletedAt:     t.now(),
		TaxonomyVersion: t.index.Version(),
		Priorities:      t.ExportPriorities(s),
		Summary:         t.Summarize(s),
		Progress:        t.Progress(s),
	}
}
