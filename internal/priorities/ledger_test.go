package priorities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/taxonomy/taxonomytest"
	"github.com/steveyegge/esgmatch/internal/types"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger(taxonomytest.Index(t))
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return l
}

func TestAddIsIdempotentLastWriteWins(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Add("ENV002", types.ImportanceHigh, "water stress matters"))
	require.NoError(t, l.Add("ENV020", types.ImportanceMedium, "emissions"))
	first, _ := l.Get("ENV002")

	require.NoError(t, l.Add("ENV002", types.ImportanceLow, "actually less so"))

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"ENV002", "ENV020"}, l.AllIDs(), "overwrite keeps original position")

	e, ok := l.Get("ENV002")
	require.True(t, ok)
	assert.Equal(t, types.ImportanceLow, e.Importance)
	assert.Equal(t, "actually less so", e.SourceText)
	assert.True(t, e.Timestamp.After(first.Timestamp))
}

func TestAddSameImportanceTwice(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Add("GOV001", types.ImportanceHigh, "board"))
	require.NoError(t, l.Add("GOV001", types.ImportanceHigh, "board again"))

	assert.Equal(t, []string{"GOV001"}, l.AllIDs())
	assert.Equal(t, []string{"GOV001"}, l.ByImportance(types.ImportanceHigh))
}

func TestAddUnknownField(t *testing.T) {
	l := newTestLedger(t)

	err := l.Add("MISSING", types.ImportanceHigh, "x")
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)
	assert.Zero(t, l.Len())
}

func TestAddInvalidImportance(t *testing.T) {
	l := newTestLedger(t)
	assert.Error(t, l.Add("ENV001", types.Importance("urgent"), "x"))
}

func TestRemove(t *testing.T) {
	l := newTestLedger(t)
	for _, id := range []string{"ENV001", "ENV002", "ENV003"} {
		require.NoError(t, l.Add(id, types.ImportanceMedium, id))
	}

	l.Remove("ENV002")
	l.Remove("ENV002")
	l.Remove("NEVER_ADDED")

	assert.Equal(t, []string{"ENV001", "ENV003"}, l.AllIDs())
	assert.False(t, l.Has("ENV002"))

	// positions stay consistent after removal
	require.NoError(t, l.Add("ENV003", types.ImportanceCritical, "again"))
	assert.Equal(t, []string{"ENV001", "ENV003"}, l.AllIDs())
	e, _ := l.Get("ENV003")
	assert.Equal(t, types.ImportanceCritical, e.Importance)
}

func TestByImportancePreservesOrder(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Add("SOC001", types.ImportanceHigh, ""))
	require.NoError(t, l.Add("SOC002", types.ImportanceLow, ""))
	require.NoError(t, l.Add("ENV030", types.ImportanceHigh, ""))

	assert.Equal(t, []string{"SOC001", "ENV030"}, l.ByImportance(types.ImportanceHigh))
	assert.Equal(t, []string{"SOC002"}, l.ByImportance(types.ImportanceLow))
	assert.Empty(t, l.ByImportance(types.ImportanceCritical))
}

func TestUpdateImportance(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.AddWithNotes("ENV040", types.ImportanceMedium, "waste", "mentioned twice"))

	require.NoError(t, l.UpdateImportance("ENV040", types.ImportanceCritical))
	e, _ := l.Get("ENV040")
	assert.Equal(t, types.ImportanceCritical, e.Importance)
	assert.Equal(t, "mentioned twice", e.Notes)

	assert.ErrorIs(t, l.UpdateImportance("ENV001", types.ImportanceLow), taxonomy.ErrNotFound)
}

func TestSummary(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Add("ENV001", types.ImportanceHigh, ""))
	require.NoError(t, l.Add("ENV002", types.ImportanceHigh, ""))
	require.NoError(t, l.Add("ENV003", types.ImportanceLow, ""))

	assert.Equal(t, map[types.Importance]int{
		types.ImportanceCritical: 0,
		types.ImportanceHigh:     2,
		types.ImportanceMedium:   0,
		types.ImportanceLow:      1,
	}, l.Summary())
}
