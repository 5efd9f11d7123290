package repl

import (
	"context"
	"errors"
	"strings"

	"github.com/steveyegge/esgmatch/internal/conversation"
	"github.com/steveyegge/esgmatch/internal/navigator"
)

// ErrDialogueComplete is returned by Respond once every topic is closed
var ErrDialogueComplete = errors.New("conversation is complete")

// Reply is what the assistant says after one user turn
type Reply struct {
	Text    string
	TopicID string // topic the reply is about; the next topic after a move-on
	Result  conversation.TurnResult
	Done    bool
}

// Dialogue turns tracker decisions into assistant text. It holds one session
// and performs no I/O, so one Dialogue serves one conversation.
type Dialogue struct {
	tracker *conversation.Tracker
	session *conversation.Session
	topicID string
	done    bool
}

// NewDialogue starts a session on tracker
func NewDialogue(ctx context.Context, tracker *conversation.Tracker) *Dialogue {
	return &Dialogue{
		tracker: tracker,
		session: tracker.NewSession(ctx),
	}
}

// Start returns the welcome text and the first topic's introduction
func (d *Dialogue) Start(ctx context.Context) string {
	switch {
	case d.done:
		return ClosingMessage
	case d.topicID != "":
		return CategoryIntro(d.Current())
	}
	intro := d.advance(ctx)
	if intro == "" {
		return WelcomeMessage + "\n\n" + ClosingMessage
	}
	return WelcomeMessage + "\n\n" + intro
}

// Respond applies utterance to the current topic
func (d *Dialogue) Respond(ctx context.Context, utterance string) (Reply, error) {
	if d.done {
		return Reply{Done: true}, ErrDialogueComplete
	}
	if d.topicID == "" {
		d.advance(ctx)
		if d.done {
			return Reply{Done: true}, ErrDialogueComplete
		}
	}

	topic := d.Current()
	res, err := d.tracker.ProcessTurn(ctx, d.session, topic.ID, utterance)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{TopicID: topic.ID, Result: res}
	switch {
	case res.ShouldMoveOn:
		negative := res.Polarity == conversation.PolarityNegative
		parts := []string{MovingOn(topic.Name, res.CommitmentDetected, negative)}
		if next := d.advance(ctx); next != "" {
			parts = append(parts, next)
			reply.TopicID = d.topicID
		} else {
			parts = append(parts, ClosingMessage)
			reply.Done = true
		}
		reply.Text = strings.Join(parts, "\n\n")
	case res.SubtopicRequested:
		reply.Text = FollowUp(topic.Name, res.Interest) + "\n\n" + SubtopicQuestion(topic)
	default:
		reply.Text = FollowUp(topic.Name, res.Interest)
	}
	return reply, nil
}

// advance moves to the next open topic and returns its introduction, or ""
// and marks the dialogue done when none is left
func (d *Dialogue) advance(ctx context.Context) string {
	id, ok := d.tracker.NextTopic(d.session)
	if !ok {
		d.done = true
		d.topicID = ""
		d.tracker.Complete(ctx, d.session)
		return ""
	}
	d.topicID = id
	return CategoryIntro(d.Current())
}

// Current returns the topic under discussion
func (d *Dialogue) Current() navigator.Topic {
	t, _ := d.tracker.Navigator().Topic(d.topicID)
	return t
}

// Done reports whether every topic is closed
func (d *Dialogue) Done() bool { return d.done }

// Session returns the underlying session
func (d *Dialogue) Session() *conversation.Session { return d.session }

// Profile snapshots the conversation so far
func (d *Dialogue) Profile() *conversation.Profile {
	return d.tracker.Profile(d.session)
}

// Progress reports how far the conversation has come
func (d *Dialogue) Progress() conversation.Progress {
	return d.tracker.Progress(d.session)
}
