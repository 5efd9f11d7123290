package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/esgmatch/internal/navigator"
	"github.com/steveyegge/esgmatch/internal/types"
)

func TestCategoryIntro(t *testing.T) {
	got := CategoryIntro(navigator.Topic{Name: "Water Management", Description: "Water Management within Environmental"})
	assert.Equal(t, "Let's talk about **Water Management**.\n\nWater Management within Environmental\n\n"+
		"On a scale from low to high, how important is water management in your investment decisions?", got)
}

func TestSubtopicQuestion(t *testing.T) {
	tests := []struct {
		name     string
		subs     []string
		contains []string
		excludes []string
	}{
		{
			name:     "three or fewer are all listed",
			subs:     []string{"Water Consumption", "Water Stress"},
			contains: []string{"- Water Consumption\n", "- Water Stress\n", "Which of these resonate most"},
			excludes: []string{"other aspects\n"},
		},
		{
			name:     "more than three are truncated",
			subs:     []string{"A", "B", "C", "D", "E"},
			contains: []string{"- A\n", "- C\n", "- ...and 2 other aspects\n"},
			excludes: []string{"- D\n"},
		},
		{
			name:     "no sub-issues asks an open question",
			subs:     nil,
			contains: []string{"which specific aspects of it matter most?"},
			excludes: []string{"- "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubtopicQuestion(navigator.Topic{Name: "Water Management", SubIssues: tt.subs})
			assert.Contains(t, got, "Since water management is important to you")
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
			for _, e := range tt.excludes {
				assert.NotContains(t, got, e)
			}
		})
	}
}

func TestFollowUp(t *testing.T) {
	tests := []struct {
		level types.InterestLevel
		want  string
	}{
		{types.InterestHigh, "really matters to you"},
		{types.InterestMedium, "tell me a bit more"},
		{types.InterestLow, "isn't a top priority"},
		{types.InterestUncertain, "not sure about biodiversity"},
		{"", "tell me a bit more"},
	}
	for _, tt := range tests {
		assert.Contains(t, FollowUp("Biodiversity", tt.level), tt.want, "level %q", tt.level)
	}
}

func TestMovingOn(t *testing.T) {
	assert.Equal(t, "Got it, Air Quality is a lower priority for you.", MovingOn("Air Quality", true, true))
	assert.Equal(t, "Noted: Air Quality is on your list.", MovingOn("Air Quality", true, false))
	assert.Equal(t, "Let's leave Air Quality there for now.", MovingOn("Air Quality", false, false))
}
