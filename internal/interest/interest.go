// Package interest classifies how interested a user is in the current topic.
package interest

import (
	"context"

	"github.com/steveyegge/esgmatch/internal/textutil"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Topic is what a classifier needs to know about the topic under discussion
type Topic struct {
	ID          string
	Name        string
	Description string
}

// Classifier returns one of HIGH, MEDIUM, LOW or UNCERTAIN for an utterance.
// Implementations may be slow or fail; callers decide how to recover.
type Classifier interface {
	Classify(ctx context.Context, topic Topic, utterance string) (types.InterestLevel, error)
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(ctx context.Context, topic Topic, utterance string) (types.InterestLevel, error)

// Classify calls f
func (f ClassifierFunc) Classify(ctx context.Context, topic Topic, utterance string) (types.InterestLevel, error) {
	return f(ctx, topic, utterance)
}

var (
	highPhrases = []string{
		"very important", "top priority", "care a lot", "really matters",
		"essential", "critical", "key concern", "extremely",
	}
	lowPhrases = []string{
		"not important", "don't care", "not a priority", "doesn't matter",
		"not concerned", "low priority", "skip",
	}
	uncertainPhrases = []string{
		"don't know", "not sure", "uncertain", "haven't thought",
		"unfamiliar", "what is", "explain",
	}
)

// KeywordClassifier is an offline heuristic: high, then low, then uncertain
// phrase lists are checked in order and anything else is MEDIUM. It never fails.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the phrase-list classifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify implements Classifier
func (KeywordClassifier) Classify(_ context.Context, _ Topic, utterance string) (types.InterestLevel, error) {
	return Heuristic(utterance), nil
}

// Heuristic classifies utterance from phrase lists alone
func Heuristic(utterance string) types.InterestLevel {
	tokens := textutil.Tokens(utterance)
	switch {
	case textutil.ContainsAny(tokens, highPhrases):
		return types.InterestHigh
	case textutil.ContainsAny(tokens, lowPhrases):
		return types.InterestLow
	case textutil.ContainsAny(tokens, uncertainPhrases):
		return types.InterestUncertain
	default:
		return types.InterestMedium
	}
}
