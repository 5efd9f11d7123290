package taxonomy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/taxonomy/taxonomytest"
	"github.com/steveyegge/esgmatch/internal/types"
)

func TestLoadRoundTrip(t *testing.T) {
	idx := taxonomytest.Index(t)
	require.Equal(t, len(taxonomytest.Records()), idx.Len())

	for _, f := range idx.Fields() {
		got, err := idx.GetField(f.FieldID)
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}

func TestLoadBuildsSearchText(t *testing.T) {
	idx := taxonomytest.Index(t)

	f, err := idx.GetField("ENV002")
	require.NoError(t, err)
	assert.Equal(t, "water stress areas water management water stress environmental", f.SearchText)
	assert.Equal(t, types.FieldTypeField, f.FieldType)

	pillar, err := idx.GetField("ENV000")
	require.NoError(t, err)
	assert.Equal(t, types.FieldTypePillar, pillar.FieldType)
	assert.Equal(t, "environmental pillar score environmental", pillar.SearchText)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		records []taxonomy.Record
		reason  string
	}{
		{
			name:    "missing field id",
			records: []taxonomy.Record{{FieldName: "x", Pillar: "Social"}},
			reason:  "missing field_id",
		},
		{
			name:    "blank field id",
			records: []taxonomy.Record{{FieldID: "   ", Pillar: "Social"}},
			reason:  "missing field_id",
		},
		{
			name:    "missing pillar",
			records: []taxonomy.Record{{FieldID: "A1", FieldName: "x"}},
			reason:  "missing pillar",
		},
		{
			name: "duplicate id",
			records: []taxonomy.Record{
				{FieldID: "A1", Pillar: "Social"},
				{FieldID: "A1", Pillar: "Governance"},
			},
			reason: "duplicate field_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := taxonomy.Load(tt.records)
			require.Error(t, err)
			assert.Nil(t, idx)
			assert.True(t, errors.Is(err, taxonomy.ErrMalformedRecord))

			var mre *taxonomy.MalformedRecordError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, tt.reason, mre.Reason)
		})
	}
}

func TestGetFieldNotFound(t *testing.T) {
	idx := taxonomytest.Index(t)

	_, err := idx.GetField("NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, taxonomy.ErrNotFound))
	assert.Contains(t, err.Error(), "NOPE")
	assert.False(t, idx.Has("NOPE"))
	assert.True(t, idx.Has("ENV001"))
}

func TestFieldsByIssuePreservesLoadOrder(t *testing.T) {
	idx := taxonomytest.Index(t)

	fields := idx.FieldsByIssue("Water Management")
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, f.FieldID)
	}
	assert.Equal(t, []string{"ENV001", "ENV002", "ENV003"}, ids)
	assert.Empty(t, idx.FieldsByIssue("Unknown Issue"))
	assert.Len(t, idx.FieldsByPillar("Governance"), 2)
}

func TestAllPillarsAndIssuesSorted(t *testing.T) {
	idx := taxonomytest.Index(t)

	assert.Equal(t, []string{"Environmental", "Governance", "Social"}, idx.AllPillars())
	assert.Equal(t, []string{
		"Air Quality", "Biodiversity", "Board Structure", "Business Ethics", "Climate Change",
		"Energy Management", "Human Capital", "Product Safety", "Waste & Hazardous Materials",
		"Water Management",
	}, idx.AllIssues())
}

func TestSearch(t *testing.T) {
	idx := taxonomytest.Index(t)

	got := idx.Search("WATER", 0)
	assert.Len(t, got, 3)

	got = idx.Search("water", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "ENV001", got[0].FieldID)

	assert.Empty(t, idx.Search("semiconductor", 10))
}

func TestStats(t *testing.T) {
	idx := taxonomytest.Index(t)

	stats := idx.Stats()
	assert.Equal(t, 16, stats.TotalFields)
	assert.Equal(t, 3, stats.TotalPillars)
	assert.Equal(t, 10, stats.TotalIssues)
	assert.Equal(t, "test", idx.Version())
	assert.Equal(t, "fixture", idx.Source())
}

func TestLoadEmpty(t *testing.T) {
	idx, err := taxonomy.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.AllPillars())
}
