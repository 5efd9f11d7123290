package repl

import (
	"fmt"
	"strings"

	"github.com/steveyegge/esgmatch/internal/navigator"
	"github.com/steveyegge/esgmatch/internal/types"
)

// maxListedSubtopics is how many sub-issues the subtopic question names
const maxListedSubtopics = 3

// WelcomeMessage opens every conversation
const WelcomeMessage = `Welcome! I'm here to help you work out your ESG investment preferences.

**What to expect:**
- A short conversation about your values
- Questions about Environmental, Social and Governance topics
- More time on what you care about, less on what you don't
- No right or wrong answers: this is about YOUR priorities

At the end you'll get a preference profile you can share with your financial advisor.`

// ClosingMessage is shown once every topic is closed
const ClosingMessage = `Thank you for sharing your preferences!

Here is your ESG preference profile: your top priorities, areas of lower interest
and the specific fields we recorded along the way.`

// CategoryIntro introduces a topic and asks how important it is
func CategoryIntro(t navigator.Topic) string {
	return fmt.Sprintf("Let's talk about **%s**.\n\n%s\n\nOn a scale from low to high, how important is %s in your investment decisions?",
		t.Name, t.Description, strings.ToLower(t.Name))
}

// SubtopicQuestion asks which sub-issues of t matter most. Topics without
// sub-issues get an open question instead.
func SubtopicQuestion(t navigator.Topic) string {
	name := strings.ToLower(t.Name)
	if len(t.SubIssues) == 0 {
		return fmt.Sprintf("Since %s is important to you, which specific aspects of it matter most?", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Since %s is important to you, let's explore which specific aspects matter most:\n\n", name)
	listed := t.SubIssues
	if len(listed) > maxListedSubtopics {
		listed = listed[:maxListedSubtopics]
	}
	for _, sub := range listed {
		fmt.Fprintf(&b, "- %s\n", sub)
	}
	if extra := len(t.SubIssues) - len(listed); extra > 0 {
		fmt.Fprintf(&b, "- ...and %d other aspects\n", extra)
	}
	fmt.Fprintf(&b, "\nWhich of these resonate most with you, or are there other aspects of %s you care about?", name)
	return b.String()
}

// FollowUp responds to a classified interest level for a topic still open
func FollowUp(topicName string, level types.InterestLevel) string {
	name := strings.ToLower(topicName)
	switch level {
	case types.InterestHigh:
		return fmt.Sprintf("I can tell %s really matters to you. Let's look at the specific aspects that are most important.", name)
	case types.InterestLow:
		return fmt.Sprintf("I understand %s isn't a top priority for you. That's fine, tell me if anything in it stands out, or we'll move on shortly.", name)
	case types.InterestUncertain:
		return fmt.Sprintf("No worries if you're not sure about %s yet. It covers how companies handle it in their operations. Does any part of it stand out to you?", name)
	default:
		return fmt.Sprintf("Thanks for sharing. Can you tell me a bit more about which aspects of %s matter most to you?", name)
	}
}

// MovingOn acknowledges a closed topic
func MovingOn(topicName string, committed, negative bool) string {
	switch {
	case negative:
		return fmt.Sprintf("Got it, %s is a lower priority for you.", topicName)
	case committed:
		return fmt.Sprintf("Noted: %s is on your list.", topicName)
	default:
		return fmt.Sprintf("Let's leave %s there for now.", topicName)
	}
}
