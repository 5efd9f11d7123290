// Package navigator derives the conversation topic tree (Pillar → Issue) from a
// taxonomy index and picks the next topic to discuss.
package navigator

import (
	"fmt"
	"strings"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Level is the depth of a category node
type Level string

const (
	LevelPillar Level = "Pillar"
	LevelIssue  Level = "Issue"
)

// Node is a derived, read-only view over taxonomy fields.
// Pillar nodes list issues as children; issue nodes list sub-issues.
type Node struct {
	Level      Level
	Name       string
	Parent     *Node // nil for pillars
	ChildNames []string
}

// Topic is one stop of the conversation
type Topic struct {
	ID          string          `json:"id"`
	Kind        types.TopicKind `json:"kind"`
	Name        string          `json:"name"`
	Pillar      string          `json:"pillar"`
	Issue       string          `json:"issue,omitempty"`
	SubIssues   []string        `json:"sub_issues,omitempty"`
	Description string          `json:"description"`
}

// Progress is the read-only session view NextTopic needs
type Progress interface {
	IsCommitted(topicID string) bool
	// Mentions lists the names extracted from free text while topicID was current
	Mentions(topicID string) []string
}

// Option configures a Navigator
type Option func(*Navigator)

// WithPillarIntros emits a "<pillar>_intro" topic before each pillar's issues
func WithPillarIntros() Option {
	return func(n *Navigator) { n.intros = true }
}

// WithFocus enables pillar intros and skips issues that were not mentioned while
// the pillar's intro was discussed. A committed intro that mentioned no issue at
// all leaves every issue of that pillar in play.
func WithFocus() Option {
	return func(n *Navigator) {
		n.intros = true
		n.focused = true
	}
}

// Navigator walks topics depth-first: pillars in discovery order, then issues
// in discovery order. It is immutable after New.
type Navigator struct {
	pillars []*Node
	issues  map[string][]*Node // pillar -> issue nodes
	topics  []Topic
	byID    map[string]int
	// issue topic IDs by exact pillar and issue name
	issueIDs map[issueKey]string
	intros   bool
	focused bool
}

type issueKey struct{ pillar, issue string }

// New builds the topic tree in a single pass over idx. Fields without an issue
// (pillar score rows, headlines) do not create topics. Distinct issue names
// whose slugs collide ("Health & Safety", "Health and Safety") stay separate
// topics; the later one gets a "_2", "_3", ... suffix.
func New(idx *taxonomy.Index, opts ...Option) *Navigator {
	n := &Navigator{
		issues:   make(map[string][]*Node),
		byID:     make(map[string]int),
		issueIDs: make(map[issueKey]string),
	}
	for _, opt := range opts {
		opt(n)
	}

	pillarNodes := make(map[string]*Node)
	issueNodes := make(map[string]*Node) // keyed by topic id
	nodeIDs := make(map[*Node]string)
	seenSub := make(map[string]map[string]bool)

	for _, f := range idx.Fields() {
		if f.Pillar == "" || f.Issue == "" {
			continue
		}
		p, ok := pillarNodes[f.Pillar]
		if !ok {
			p = &Node{Level: LevelPillar, Name: f.Pillar}
			pillarNodes[f.Pillar] = p
			n.pillars = append(n.pillars, p)
		}

		key := issueKey{f.Pillar, f.Issue}
		id, ok := n.issueIDs[key]
		if !ok {
			base := IssueTopicID(f.Pillar, f.Issue)
			id = base
			for i := 2; issueNodes[id] != nil; i++ {
				id = fmt.Sprintf("%s_%d", base, i)
			}
			n.issueIDs[key] = id
		}
		issue, ok := issueNodes[id]
		if !ok {
			issue = &Node{Level: LevelIssue, Name: f.Issue, Parent: p}
			issueNodes[id] = issue
			nodeIDs[issue] = id
			seenSub[id] = make(map[string]bool)
			p.ChildNames = append(p.ChildNames, f.Issue)
			n.issues[f.Pillar] = append(n.issues[f.Pillar], issue)
		}
		if f.SubIssue != "" && !seenSub[id][f.SubIssue] {
			seenSub[id][f.SubIssue] = true
			issue.ChildNames = append(issue.ChildNames, f.SubIssue)
		}
	}

	for _, p := range n.pillars {
		if n.intros {
			n.add(Topic{
				ID:          PillarIntroID(p.Name),
				Kind:        types.TopicPillarIntro,
				Name:        p.Name,
				Pillar:      p.Name,
				Description: p.Name + " topics in general",
			})
		}
		for _, issue := range n.issues[p.Name] {
			n.add(Topic{
				ID:          nodeIDs[issue],
				Kind:        types.TopicIssue,
				Name:        issue.Name,
				Pillar:      p.Name,
				Issue:       issue.Name,
				SubIssues:   append([]string(nil), issue.ChildNames...),
				Description: issue.Name + " within " + p.Name,
			})
		}
	}
	return n
}

func (n *Navigator) add(t Topic) {
	n.byID[t.ID] = len(n.topics)
	n.topics = append(n.topics, t)
}

// NextTopic returns the first topic in traversal order that is not committed
// (and, in focused mode, not filtered out by its pillar intro). ok is false when
// every topic is exhausted.
func (n *Navigator) NextTopic(p Progress) (topicID string, ok bool) {
	for _, t := range n.topics {
		if p.IsCommitted(t.ID) {
			continue
		}
		if n.focused && t.Kind == types.TopicIssue && n.filteredOut(p, t) {
			continue
		}
		return t.ID, true
	}
	return "", false
}

func (n *Navigator) filteredOut(p Progress, t Topic) bool {
	intro := PillarIntroID(t.Pillar)
	if !p.IsCommitted(intro) {
		return false
	}
	mentioned := p.Mentions(intro)
	if len(mentioned) == 0 {
		return false
	}
	for _, name := range mentioned {
		if strings.EqualFold(name, t.Issue) {
			return false
		}
	}
	return true
}

// Topic looks up a topic by ID
func (n *Navigator) Topic(id string) (Topic, bool) {
	i, ok := n.byID[id]
	if !ok {
		return Topic{}, false
	}
	return n.topics[i], true
}

// Topics returns every topic in traversal order
func (n *Navigator) Topics() []Topic {
	out := make([]Topic, len(n.topics))
	copy(out, n.topics)
	return out
}

// Len returns the number of topics
func (n *Navigator) Len() int { return len(n.topics) }

// Pillars returns pillar nodes in discovery order
func (n *Navigator) Pillars() []*Node { return n.pillars }

// Issues returns the issue nodes of a pillar in discovery order
func (n *Navigator) Issues(pillar string) []*Node { return n.issues[pillar] }

// Focused reports whether focused mode is on
func (n *Navigator) Focused() bool { return n.focused }

// TopicForField returns the issue topic a field belongs to
func (n *Navigator) TopicForField(f types.Field) (string, bool) {
	if f.Issue == "" {
		return "", false
	}
	id, ok := n.issueIDs[issueKey{f.Pillar, f.Issue}]
	return id, ok
}

// PillarIntroID returns the topic ID of a pillar's introduction, e.g. "environmental_intro"
func PillarIntroID(pillar string) string {
	return slug(pillar) + "_intro"
}

// IssueTopicID returns the topic ID of an issue, e.g. "environmental_waste_and_hazardous_materials"
func IssueTopicID(pillar, issue string) string {
	return slug(pillar) + "_" + slug(issue)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "&", "and")
}
