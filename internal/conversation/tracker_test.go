package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/esgmatch/internal/events"
	"github.com/steveyegge/esgmatch/internal/interest"
	"github.com/steveyegge/esgmatch/internal/matcher"
	"github.com/steveyegge/esgmatch/internal/navigator"
	"github.com/steveyegge/esgmatch/internal/taxonomy/taxonomytest"
	"github.com/steveyegge/esgmatch/internal/types"
)

const waterTopic = "environmental_water_management"

// mockRecorder collects events and optionally fails
type mockRecorder struct {
	events []*events.ConversationEvent
	err    error
}

func (m *mockRecorder) RecordEvent(_ context.Context, e *events.ConversationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockRecorder) ofType(et events.EventType) []*events.ConversationEvent {
	var out []*events.ConversationEvent
	for _, e := range m.events {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// scriptedClassifier returns levels in order, repeating the last one
type scriptedClassifier struct {
	levels []types.InterestLevel
	err    error
	calls  int
}

func (c *scriptedClassifier) Classify(context.Context, interest.Topic, string) (types.InterestLevel, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	i := c.calls - 1
	if i >= len(c.levels) {
		i = len(c.levels) - 1
	}
	return c.levels[i], nil
}

func newTestTracker(t *testing.T, navOpts []navigator.Option, opts ...Option) *Tracker {
	t.Helper()
	idx := taxonomytest.Index(t)
	m, err := matcher.NewDefault(idx)
	require.NoError(t, err)
	tr, err := NewTracker(idx, m, navigator.New(idx, navOpts...), opts...)
	require.NoError(t, err)
	return tr
}

func TestHighInterestThenSubtopicCommitment(t *testing.T) {
	rec := &mockRecorder{}
	tr := newTestTracker(t, nil,
		WithClassifier(&scriptedClassifier{levels: []types.InterestLevel{types.InterestHigh}}),
		WithRecorder(rec))
	ctx := context.Background()
	s := tr.NewSession(ctx)

	first, err := tr.ProcessTurn(ctx, s, waterTopic, "Water matters a great deal to us")
	require.NoError(t, err)
	assert.False(t, first.CommitmentDetected)
	assert.False(t, first.ShouldMoveOn)
	assert.True(t, first.SubtopicRequested)
	assert.Equal(t, StateAwaitingSubtopic, first.State)
	assert.True(t, s.AskedSubtopic[waterTopic])

	second, err := tr.ProcessTurn(ctx, s, waterTopic, "Water Stress Areas resonate with me")
	require.NoError(t, err)
	assert.True(t, second.CommitmentDetected)
	assert.True(t, second.ShouldMoveOn)
	assert.False(t, second.IsLooping)
	assert.Equal(t, PolarityPositive, second.Polarity)
	assert.Equal(t, StateCommitted, second.State)

	require.NotEmpty(t, second.MatchedFields)
	foundWater := false
	for _, m := range second.MatchedFields {
		if m.Field.Issue == "Water Management" {
			foundWater = true
		}
		assert.Greater(t, m.Score, DefaultCommitThreshold)
	}
	assert.True(t, foundWater)

	assert.Equal(t, []string{"ENV002"}, s.Ledger.AllIDs())
	e, _ := s.Ledger.Get("ENV002")
	assert.Equal(t, types.ImportanceHigh, e.Importance)
	assert.Equal(t, "Water Stress Areas resonate with me", e.SourceText)
	assert.Equal(t, []string{"Water Stress"}, s.Mentions(waterTopic))

	assert.Len(t, rec.ofType(events.EventTypeSubtopicRequested), 1)
	assert.Len(t, rec.ofType(events.EventTypeCommitmentDetected), 1)
	assert.Len(t, rec.ofType(events.EventTypePriorityRecorded), 1)
	assert.Len(t, rec.ofType(events.EventTypeTopicStarted), 1)
}

func TestVagueAnswersHitTurnCeiling(t *testing.T) {
	rec := &mockRecorder{}
	tr := newTestTracker(t, nil, WithRecorder(rec))
	ctx := context.Background()
	s := tr.NewSession(ctx)

	utterances := []string{"I guess quality?", "Kind of, not really", "I don't understand"}
	var results []TurnResult
	for _, u := range utterances {
		r, err := tr.ProcessTurn(ctx, s, waterTopic, u)
		require.NoError(t, err)
		results = append(results, r)
	}

	for _, r := range results[:2] {
		assert.False(t, r.CommitmentDetected)
		assert.False(t, r.IsLooping)
		assert.False(t, r.ShouldMoveOn)
	}
	last := results[2]
	assert.True(t, last.IsLooping)
	assert.True(t, last.ShouldMoveOn)
	assert.False(t, last.CommitmentDetected)
	assert.True(t, s.IsCommitted(waterTopic))
	assert.Equal(t, 3, s.TurnCounts[waterTopic])
	assert.Zero(t, s.Ledger.Len(), "loop escapes record nothing")

	escapes := rec.ofType(events.EventTypeLoopEscape)
	require.Len(t, escapes, 1)
	data, err := escapes[0].GetLoopEscapeData()
	require.NoError(t, err)
	assert.Equal(t, 3, data.Turns)
}

func TestCeilingHoldsWhileAwaitingSubtopic(t *testing.T) {
	tr := newTestTracker(t, nil,
		WithClassifier(&scriptedClassifier{levels: []types.InterestLevel{types.InterestHigh}}))
	ctx := context.Background()
	s := tr.NewSession(ctx)

	var r TurnResult
	var err error
	subtopicQuestions := 0
	for i := 0; i < 3; i++ {
		r, err = tr.ProcessTurn(ctx, s, waterTopic, "hmm, it's complicated")
		require.NoError(t, err)
		if r.SubtopicRequested {
			subtopicQuestions++
		}
	}
	assert.Equal(t, 1, subtopicQuestions, "subtopic question is never issued twice")
	assert.True(t, r.IsLooping)
	assert.True(t, r.ShouldMoveOn)
}

func TestCommittedTopicIsFrozen(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)

	r, err := tr.ProcessTurn(ctx, s, waterTopic, "absolutely, water stress areas")
	require.NoError(t, err)
	require.True(t, r.CommitmentDetected)
	assert.Equal(t, 1, s.TurnCounts[waterTopic])

	for i := 0; i < 3; i++ {
		again, err := tr.ProcessTurn(ctx, s, waterTopic, "yes, and also wastewater discharge")
		require.NoError(t, err)
		assert.True(t, again.ShouldMoveOn)
		assert.False(t, again.CommitmentDetected)
		assert.Empty(t, again.MatchedFields)
	}
	tr.MarkSubtopicAsked(s, waterTopic)

	assert.Equal(t, 1, s.TurnCounts[waterTopic])
	assert.False(t, s.AskedSubtopic[waterTopic])
	assert.False(t, s.Ledger.Has("ENV003"))
}

func TestTopicChangeResetsTurnCount(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)
	air := "environmental_air_quality"

	for i := 0; i < 2; i++ {
		_, err := tr.ProcessTurn(ctx, s, waterTopic, "hmm")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.TurnCounts[waterTopic])

	_, err := tr.ProcessTurn(ctx, s, air, "hmm")
	require.NoError(t, err)
	assert.Equal(t, air, s.CurrentTopic)
	assert.Equal(t, 1, s.TurnCounts[air])

	r, err := tr.ProcessTurn(ctx, s, waterTopic, "hmm")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Turn)
	assert.False(t, r.IsLooping, "count restarted on return")
	assert.Equal(t, []string{waterTopic, air}, s.Discussed())
}

func TestClassifierFailureDefaultsToMedium(t *testing.T) {
	rec := &mockRecorder{}
	cls := &scriptedClassifier{err: errors.New("upstream timeout")}
	tr := newTestTracker(t, nil, WithClassifier(cls), WithRecorder(rec))
	ctx := context.Background()
	s := tr.NewSession(ctx)

	r, err := tr.ProcessTurn(ctx, s, waterTopic, "tell me more")
	require.NoError(t, err)
	assert.Equal(t, types.InterestMedium, r.Interest)
	assert.Equal(t, StateInProgress, r.State)
	assert.Equal(t, 1, cls.calls)
	assert.Len(t, rec.ofType(events.EventTypeClassifierFallback), 1)
}

func TestInvalidClassifierLevelDefaultsToMedium(t *testing.T) {
	cls := &scriptedClassifier{levels: []types.InterestLevel{"VERY HIGH"}}
	tr := newTestTracker(t, nil, WithClassifier(cls))
	ctx := context.Background()

	r, err := tr.ProcessTurn(ctx, tr.NewSession(ctx), waterTopic, "tell me more")
	require.NoError(t, err)
	assert.Equal(t, types.InterestMedium, r.Interest)
}

func TestRecorderFailureDoesNotFailTurn(t *testing.T) {
	tr := newTestTracker(t, nil, WithRecorder(&mockRecorder{err: errors.New("disk full")}))
	ctx := context.Background()

	r, err := tr.ProcessTurn(ctx, tr.NewSession(ctx), waterTopic, "yes, water stress areas")
	require.NoError(t, err)
	assert.True(t, r.CommitmentDetected)
}

func TestNegativeCommitment(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)
	board := "governance_board_structure"

	r, err := tr.ProcessTurn(ctx, s, board, "I don't care about board independence")
	require.NoError(t, err)
	assert.True(t, r.CommitmentDetected)
	assert.True(t, r.ShouldMoveOn)
	assert.Equal(t, PolarityNegative, r.Polarity)
	assert.Equal(t, types.InterestLow, r.Interest)

	e, ok := s.Ledger.Get("GOV001")
	require.True(t, ok)
	assert.Equal(t, types.ImportanceHigh, e.Importance)
	assert.Contains(t, e.Notes, "don't care")
}

func TestHyphenatedWordDoesNotRecordCarbonMonoxide(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)

	r, err := tr.ProcessTurn(ctx, s, "social_human_capital", "co-operation on carbon with our workers is important to me")
	require.NoError(t, err)
	assert.True(t, r.CommitmentDetected)
	for _, m := range r.MatchedFields {
		assert.NotEqual(t, "ENV010", m.Field.FieldID)
	}
	assert.False(t, s.Ledger.Has("ENV010"))
}

func TestUnknownTopicIsTrackedAdHoc(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)

	r, err := tr.ProcessTurn(ctx, s, "custom_topic", "yes")
	require.NoError(t, err)
	assert.True(t, r.CommitmentDetected)
	assert.True(t, s.IsCommitted("custom_topic"))
}

func TestProcessTurnRequiresArguments(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()

	_, err := tr.ProcessTurn(ctx, nil, waterTopic, "yes")
	assert.Error(t, err)
	_, err = tr.ProcessTurn(ctx, tr.NewSession(ctx), "", "yes")
	assert.Error(t, err)
}

func TestMarkSubtopicAskedIsSetOnce(t *testing.T) {
	cls := &scriptedClassifier{levels: []types.InterestLevel{types.InterestHigh}}
	tr := newTestTracker(t, nil, WithClassifier(cls))
	ctx := context.Background()
	s := tr.NewSession(ctx)

	tr.MarkSubtopicAsked(s, waterTopic)
	tr.MarkSubtopicAsked(s, waterTopic)
	assert.True(t, s.AskedSubtopic[waterTopic])

	r, err := tr.ProcessTurn(ctx, s, waterTopic, "it matters a lot")
	require.NoError(t, err)
	assert.False(t, r.SubtopicRequested, "already asked")
	assert.Equal(t, StateInProgress, r.State)
}

func TestNextTopicAndExport(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)

	id, ok := tr.NextTopic(s)
	require.True(t, ok)
	assert.Equal(t, waterTopic, id)

	_, err := tr.ProcessTurn(ctx, s, id, "Water Stress Areas resonate with me")
	require.NoError(t, err)

	id, ok = tr.NextTopic(s)
	require.True(t, ok)
	assert.Equal(t, "environmental_air_quality", id)

	_, err = tr.ProcessTurn(ctx, s, "environmental_climate_change", "yes, scope 1 ghg emissions")
	require.NoError(t, err)

	rows := tr.ExportPriorities(s)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, PriorityRow{
		FieldID:    "ENV002",
		FieldName:  "Water Stress Areas",
		Pillar:     "Environmental",
		Issue:      "Water Management",
		SubIssue:   "Water Stress",
		Importance: types.ImportanceHigh,
	}, rows[0])
	assert.Equal(t, "ENV020", rows[1].FieldID)

	p := tr.Progress(s)
	assert.Equal(t, 10, p.Total)
	assert.Equal(t, 2, p.Closed)
	assert.Equal(t, 3, p.Current)
	assert.Equal(t, 20, p.Percentage)
}

func TestNextTopicExhaustsAllTopics(t *testing.T) {
	tr := newTestTracker(t, nil)
	ctx := context.Background()
	s := tr.NewSession(ctx)

	visited := 0
	for {
		id, ok := tr.NextTopic(s)
		if !ok {
			break
		}
		visited++
		for {
			r, err := tr.ProcessTurn(ctx, s, id, "hmm")
			require.NoError(t, err)
			if r.ShouldMoveOn {
				break
			}
		}
		require.LessOrEqual(t, visited, 10)
	}
	assert.Equal(t, 10, visited)
	assert.Equal(t, 100, tr.Progress(s).Percentage)
}

func TestFocusedPillarIntro(t *testing.T) {
	tr := newTestTracker(t, []navigator.Option{navigator.WithFocus()})
	ctx := context.Background()
	s := tr.NewSession(ctx)

	id, _ := tr.NextTopic(s)
	require.Equal(t, "environmental_intro", id)

	r, err := tr.ProcessTurn(ctx, s, id, "Climate change and biodiversity are what I care about")
	require.NoError(t, err)
	require.True(t, r.CommitmentDetected)
	assert.ElementsMatch(t, []string{"Climate Change", "Biodiversity"}, s.Mentions(id))

	id, _ = tr.NextTopic(s)
	assert.Equal(t, "environmental_climate_change", id)
	_, err = tr.ProcessTurn(ctx, s, id, "yes")
	require.NoError(t, err)

	id, _ = tr.NextTopic(s)
	assert.Equal(t, "environmental_biodiversity", id)
}

func TestSummarize(t *testing.T) {
	cls := &scriptedClassifier{levels: []types.InterestLevel{types.InterestHigh, types.InterestHigh, types.InterestUncertain}}
	tr := newTestTracker(t, nil, WithClassifier(cls))
	ctx := context.Background()
	s := tr.NewSession(ctx)

	_, err := tr.ProcessTurn(ctx, s, waterTopic, "resonates strongly")
	require.NoError(t, err)
	_, err = tr.ProcessTurn(ctx, s, "environmental_air_quality", "don't care")
	require.NoError(t, err)
	_, err = tr.ProcessTurn(ctx, s, "environmental_climate_change", "what is that")
	require.NoError(t, err)

	sum := tr.Summarize(s)
	assert.Equal(t, 10, sum.TopicsTotal)
	assert.Equal(t, 2, sum.TopicsExplored)
	require.Len(t, sum.High, 1)
	assert.Equal(t, "Water Management", sum.High[0].Name)
	assert.Equal(t, "resonates strongly", sum.High[0].Notes)
	require.Len(t, sum.Low, 1)
	assert.True(t, sum.Low[0].Negative)
	require.Len(t, sum.Uncertain, 1)
	assert.False(t, sum.Uncertain[0].Committed)
	assert.Empty(t, sum.Medium)
}

func TestProfileSnapshot(t *testing.T) {
	tr := newTestTracker(t, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }
	ctx := context.Background()
	s := tr.NewSession(ctx)

	_, err := tr.ProcessTurn(ctx, s, waterTopic, "Water Stress Areas resonate with me")
	require.NoError(t, err)

	p := tr.Profile(s)
	assert.Equal(t, s.ID, p.SessionID)
	assert.Equal(t, fixed, p.CompletedAt)
	assert.Equal(t, "test", p.TaxonomyVersion)
	require.NotEmpty(t, p.Priorities)
	assert.Equal(t, "ENV002", p.Priorities[0].FieldID)
	assert.Equal(t, 1, p.Progress.Closed)
	assert.Equal(t, 1, p.Summary.TopicsExplored)

	// later turns do not leak into the snapshot
	_, err = tr.ProcessTurn(ctx, s, "environmental_climate_change", "yes, scope 1 ghg emissions")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Progress.Closed)
}

func TestNewTrackerValidation(t *testing.T) {
	idx := taxonomytest.Index(t)
	m, err := matcher.NewDefault(idx)
	require.NoError(t, err)

	_, err = NewTracker(nil, m, navigator.New(idx))
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.TurnCeiling = 0
	_, err = NewTracker(idx, m, navigator.New(idx), WithConfig(cfg))
	assert.Error(t, err)
}
