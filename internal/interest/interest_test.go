package interest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/esgmatch/internal/types"
)

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      types.InterestLevel
	}{
		{"high", "Water is very important to me", types.InterestHigh},
		{"high uppercase", "EXTREMELY", types.InterestHigh},
		{"low", "I don't care about this", types.InterestLow},
		{"low skip", "let's skip it", types.InterestLow},
		{"uncertain", "I'm not sure what that means", types.InterestUncertain},
		{"uncertain question", "what is scope 3?", types.InterestUncertain},
		{"high wins over low", "critical, not a priority for others", types.InterestHigh},
		{"default medium", "it is fine I suppose", types.InterestMedium},
		{"empty", "", types.InterestMedium},
		{"no partial words", "skipper", types.InterestMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Heuristic(tt.utterance))
		})
	}
}

func TestKeywordClassifierNeverFails(t *testing.T) {
	c := NewKeywordClassifier()
	level, err := c.Classify(context.Background(), Topic{Name: "Water Management"}, "top priority")
	assert.NoError(t, err)
	assert.Equal(t, types.InterestHigh, level)
}
