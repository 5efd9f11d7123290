package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/esgmatch/internal/interest"
	"github.com/steveyegge/esgmatch/internal/types"
)

const classifierSystemPrompt = `You are an ESG (Environmental, Social, Governance) investment preference advisor.
You judge how much a user cares about one ESG topic from a single reply.
Recognize when users are uncertain versus indifferent; these are different.
Never assume what they should care about.`

// classificationResponse is the JSON shape the model is asked to produce
type classificationResponse struct {
	InterestLevel string `json:"interest_level"`
	Reasoning     string `json:"reasoning"`
}

// Classifier is an interest.Classifier backed by a language model
type Classifier struct {
	completer Completer
}

var _ interest.Classifier = (*Classifier)(nil)

// NewClassifier classifies through completer, which should normally be a *Resilient
func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

// Classify implements interest.Classifier. Unparseable or out-of-range answers
// are errors; the conversation tracker decides the fallback.
func (c *Classifier) Classify(ctx context.Context, topic interest.Topic, utterance string) (types.InterestLevel, error) {
	text, err := c.completer.Complete(ctx, classifierSystemPrompt, buildClassificationPrompt(topic, utterance))
	if err != nil {
		return "", fmt.Errorf("interest classification failed: %w", err)
	}

	parsed, err := DecodeJSON[classificationResponse](text)
	if err != nil {
		return "", fmt.Errorf("failed to parse interest classification: %w", err)
	}

	level, err := types.ParseInterestLevel(parsed.InterestLevel)
	if err != nil {
		return "", fmt.Errorf("model answered with %w", err)
	}
	return level, nil
}

func buildClassificationPrompt(topic interest.Topic, utterance string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic.Name)
	if topic.Description != "" {
		fmt.Fprintf(&b, "Context: %s\n", topic.Description)
	}
	fmt.Fprintf(&b, "User reply: %q\n\n", utterance)
	b.WriteString(`Classify the user's interest in this topic:
- HIGH: they clearly care a lot
- MEDIUM: they care but it is not a top priority
- LOW: they don't care much
- UNCERTAIN: they don't know or need an explanation

Respond with JSON only:
{"interest_level": "HIGH|MEDIUM|LOW|UNCERTAIN", "reasoning": "one short sentence"}`)
	return b.String()
}
