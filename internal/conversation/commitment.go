package conversation

import (
	"github.com/steveyegge/esgmatch/internal/textutil"
)

// Polarity tells a positive commitment ("that one resonates") from an explicit
// negative one ("don't care"). Both close the topic.
type Polarity string

const (
	PolarityNone     Polarity = ""
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Commitment is the outcome of scanning one utterance
type Commitment struct {
	Detected bool
	Phrase   string
	Polarity Polarity
	Hedge    string // set when a hedge vetoed an otherwise detected phrase
}

var (
	// negative phrases are checked first so "don't care about" is not read as "care about"
	negativePhrases = []string{
		"not really", "don't care", "low priority", "not interested", "not for me",
		"not a priority", "not important", "doesn't matter",
	}
	positivePhrases = []string{
		"resonate", "resonates", "interested in", "care about", "priority",
		"important to me", "yes", "that one", "absolutely",
	}
	hedgePhrases = []string{
		"kind of", "sort of", "i guess", "maybe", "not sure",
		"don't understand", "don't know",
	}
)

// DetectCommitment scans a case-folded utterance for commitment phrases.
// A hedge anywhere in the utterance vetoes commitment.
func DetectCommitment(utterance string) Commitment {
	tokens := textutil.Tokens(utterance)

	var c Commitment
	if phrase, ok := textutil.FirstMatch(tokens, negativePhrases); ok {
		c = Commitment{Detected: true, Phrase: phrase, Polarity: PolarityNegative}
	} else if phrase, ok := textutil.FirstMatch(tokens, positivePhrases); ok {
		c = Commitment{Detected: true, Phrase: phrase, Polarity: PolarityPositive}
	} else {
		return Commitment{}
	}

	if hedge, ok := textutil.FirstMatch(tokens, hedgePhrases); ok {
		return Commitment{Phrase: c.Phrase, Hedge: hedge}
	}
	return c
}
