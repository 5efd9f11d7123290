// Package matcher maps free-form user statements onto taxonomy fields using
// weighted keyword and phrase heuristics.
//
// Scoring is additive and scoped to one field at a time:
//
//	exact field name in the utterance        +10
//	each content word shared with the name   +3
//	issue / sub-issue / pillar name present  +5 / +4 / +2
//	theme boosts (once per matched theme)    table-driven
//	disambiguation rules                     table-driven
//
// Every field is ranked, including those scoring zero, so callers always get
// top_k results; results below Config.MinScore are flagged LowConfidence.
package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/textutil"
	"github.com/steveyegge/esgmatch/internal/types"
)

// ErrInvalidArgument is returned for caller contract violations such as top_k < 1
var ErrInvalidArgument = errors.New("invalid argument")

// Rule names reported in Contribution
const (
	RuleExactName      = "exact_name"
	RuleNameWord       = "name_word"
	RuleIssue          = "issue"
	RuleSubIssue       = "sub_issue"
	RulePillar         = "pillar"
	RuleTheme          = "theme"
	RuleBroadPhrase    = "broad_phrase"
	RuleNarrowPhrase   = "narrow_phrase"
	RuleNarrowSuppress = "narrow_suppressed"
)

// Contribution is one scoring rule's share of a match score
type Contribution struct {
	Rule   string  `json:"rule"`
	Detail string  `json:"detail,omitempty"`
	Points float64 `json:"points"`
}

// Match is a scored taxonomy field
type Match struct {
	Field         types.Field    `json:"field"`
	Score         float64        `json:"score"`
	LowConfidence bool           `json:"low_confidence"`
	Breakdown     []Contribution `json:"breakdown,omitempty"`
}

// Matcher scores utterances against a taxonomy index. It is read-only after
// construction and safe for concurrent use.
type Matcher struct {
	index    *taxonomy.Index
	cfg      Config
	stop     map[string]struct{}
	profiles []fieldProfile
	themes   []compiledTheme
	rules    []compiledRule
}

type fieldProfile struct {
	field      types.Field
	name       string // folded field name
	nameTokens []string
	nameWords  []string // distinct content words of the name
	issue      []string
	subIssue   []string
	pillar     []string
}

type compiledTheme struct {
	name     string
	keywords [][]string
	markers  []string
	bonus    float64
}

type compiledRule struct {
	cfg           Disambiguation
	broad         [][]string
	cooccurrence  [][]string
	narrow        [][]string
	abbreviations []string
}

// New builds a matcher over idx. Field tokens are computed once here.
func New(idx *taxonomy.Index, cfg Config) (*Matcher, error) {
	if idx == nil {
		return nil, fmt.Errorf("taxonomy index is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}

	m := &Matcher{
		index: idx,
		cfg:   cfg,
		stop:  make(map[string]struct{}, len(cfg.StopWords)),
	}
	for _, w := range cfg.StopWords {
		m.stop[textutil.Fold(w)] = struct{}{}
	}

	for _, f := range idx.Fields() {
		nameTokens := textutil.Tokens(f.FieldName)
		m.profiles = append(m.profiles, fieldProfile{
			field:      f,
			name:       textutil.Fold(f.FieldName),
			nameTokens: nameTokens,
			nameWords:  m.contentWords(nameTokens),
			issue:      textutil.Tokens(f.Issue),
			subIssue:   textutil.Tokens(f.SubIssue),
			pillar:     textutil.Tokens(f.Pillar),
		})
	}

	for _, th := range cfg.Themes {
		ct := compiledTheme{name: th.Name, bonus: th.Bonus, markers: foldAll(th.FieldMarkers)}
		for _, kw := range th.Keywords {
			ct.keywords = append(ct.keywords, textutil.Tokens(kw))
		}
		m.themes = append(m.themes, ct)
	}

	for _, d := range cfg.Disambiguations {
		cr := compiledRule{cfg: d}
		d.BroadMarkers = foldAll(d.BroadMarkers)
		d.NarrowMarkers = foldAll(d.NarrowMarkers)
		cr.cfg = d
		for _, p := range d.BroadPhrases {
			cr.broad = append(cr.broad, textutil.Tokens(p))
		}
		for _, group := range d.BroadCooccurrence {
			cr.cooccurrence = append(cr.cooccurrence, foldAll(group))
		}
		for _, p := range d.NarrowPhrases {
			cr.narrow = append(cr.narrow, textutil.Tokens(p))
		}
		cr.abbreviations = foldAll(d.NarrowAbbreviations)
		m.rules = append(m.rules, cr)
	}

	return m, nil
}

// NewDefault builds a matcher with DefaultConfig
func NewDefault(idx *taxonomy.Index) (*Matcher, error) {
	return New(idx, DefaultConfig())
}

// Config returns the matcher's configuration
func (m *Matcher) Config() Config {
	return m.cfg
}

// FindMatches ranks every field against utterance and returns the top topK.
// Ties keep taxonomy load order. An empty utterance is valid and scores zero everywhere.
func (m *Matcher) FindMatches(utterance string, topK int) ([]Match, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1 (got %d)", ErrInvalidArgument, topK)
	}

	u := newUtterance(utterance, m)
	hits := make([]ruleHit, len(m.rules))
	for i, r := range m.rules {
		hits[i] = r.evaluate(u)
	}

	matches := make([]Match, 0, len(m.profiles))
	for i := range m.profiles {
		score, breakdown := m.score(u, &m.profiles[i], hits)
		matches = append(matches, Match{
			Field:         m.profiles[i].field,
			Score:         score,
			LowConfidence: score < m.cfg.MinScore,
			Breakdown:     breakdown,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// FindByKeywords matches a list of keywords as if they were one utterance
func (m *Matcher) FindByKeywords(keywords []string, topK int) ([]Match, error) {
	return m.FindMatches(strings.Join(keywords, " "), topK)
}

// FieldContext renders a field's position in the hierarchy, e.g.
// "Pillar: Environmental > Issue: Water Management > Field: Water Stress Areas (ENV002)".
func (m *Matcher) FieldContext(fieldID string) (string, error) {
	f, err := m.index.GetField(fieldID)
	if err != nil {
		return "", err
	}
	return FormatContext(f), nil
}

// FormatContext renders the hierarchy path of f
func FormatContext(f types.Field) string {
	var parts []string
	if f.Pillar != "" {
		parts = append(parts, "Pillar: "+f.Pillar)
	}
	if f.Issue != "" {
		parts = append(parts, "Issue: "+f.Issue)
	}
	if f.SubIssue != "" {
		parts = append(parts, "Sub-Issue: "+f.SubIssue)
	}
	parts = append(parts, fmt.Sprintf("Field: %s (%s)", f.FieldName, f.FieldID))
	return strings.Join(parts, " > ")
}

// utterance is the pre-tokenized form of one user statement
type utterance struct {
	tokens []string
	words  map[string]struct{} // content words
	// whole words; abbreviations are matched here so "co-op" is not read as "co"
	rawWords []string
}

func newUtterance(text string, m *Matcher) utterance {
	tokens := textutil.Tokens(text)
	words := make(map[string]struct{}, len(tokens))
	for _, w := range m.contentWords(tokens) {
		words[w] = struct{}{}
	}
	return utterance{tokens: tokens, words: words, rawWords: textutil.Words(text)}
}

func (m *Matcher) contentWords(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if _, stop := m.stop[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (m *Matcher) score(u utterance, p *fieldProfile, hits []ruleHit) (float64, []Contribution) {
	w := m.cfg.Weights
	var total float64
	var breakdown []Contribution
	add := func(rule, detail string, points float64) {
		if points == 0 {
			return
		}
		total += points
		breakdown = append(breakdown, Contribution{Rule: rule, Detail: detail, Points: points})
	}

	if textutil.ContainsPhrase(u.tokens, p.nameTokens) {
		add(RuleExactName, p.field.FieldName, w.ExactName)
	}

	var shared []string
	for _, word := range p.nameWords {
		if _, ok := u.words[word]; ok {
			shared = append(shared, word)
		}
	}
	add(RuleNameWord, strings.Join(shared, ","), float64(len(shared))*w.NameWord)

	if textutil.ContainsPhrase(u.tokens, p.issue) {
		add(RuleIssue, p.field.Issue, w.Issue)
	}
	if textutil.ContainsPhrase(u.tokens, p.subIssue) {
		add(RuleSubIssue, p.field.SubIssue, w.SubIssue)
	}
	if textutil.ContainsPhrase(u.tokens, p.pillar) {
		add(RulePillar, p.field.Pillar, w.Pillar)
	}

	for _, th := range m.themes {
		if th.matches(u, p.name) {
			add(RuleTheme, th.name, th.bonus)
		}
	}

	for i, r := range m.rules {
		h := hits[i]
		switch {
		case h.broad && containsAny(p.name, r.cfg.BroadMarkers):
			add(RuleBroadPhrase, r.cfg.Name, r.cfg.BroadBonus)
		case h.narrowBoost && containsAny(p.name, r.cfg.NarrowMarkers):
			add(RuleNarrowPhrase, r.cfg.Name, r.cfg.NarrowBonus)
		case h.suppressNarrow && containsAny(p.name, r.cfg.NarrowMarkers):
			add(RuleNarrowSuppress, r.cfg.Name, -r.cfg.SuppressPenalty)
		}
	}

	if total < 0 {
		total = 0
	}
	return total, breakdown
}

func (th compiledTheme) matches(u utterance, fieldName string) bool {
	if !containsAny(fieldName, th.markers) {
		return false
	}
	for _, kw := range th.keywords {
		if textutil.ContainsPhrase(u.tokens, kw) {
			return true
		}
	}
	return false
}

// ruleHit is the per-utterance outcome of a disambiguation rule
type ruleHit struct {
	broad          bool
	narrowBoost    bool
	suppressNarrow bool
}

func (r compiledRule) evaluate(u utterance) ruleHit {
	narrowPhrase := false
	for _, p := range r.narrow {
		if textutil.ContainsPhrase(u.tokens, p) {
			narrowPhrase = true
			break
		}
	}

	broad := false
	for _, p := range r.broad {
		if textutil.ContainsPhrase(u.tokens, p) {
			broad = true
			break
		}
	}
	// A co-occurrence like "carbon ... emissions" only counts as broad when the
	// narrow concept was not named outright ("carbon monoxide emissions").
	if !broad && !narrowPhrase {
		for _, group := range r.cooccurrence {
			if containsAllTokens(u.tokens, group) {
				broad = true
				break
			}
		}
	}

	abbreviation := false
	for _, a := range r.abbreviations {
		if containsAllTokens(u.rawWords, []string{a}) {
			abbreviation = true
			break
		}
	}

	return ruleHit{
		broad:          broad,
		narrowBoost:    narrowPhrase || (abbreviation && !broad),
		suppressNarrow: broad && abbreviation && !narrowPhrase,
	}
}

func containsAllTokens(tokens []string, want []string) bool {
	if len(want) == 0 {
		return false
	}
	for _, w := range want {
		found := false
		for _, t := range tokens {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// containsAny checks folded field names with plain substring tests, so the
// marker "water" also covers "wastewater".
func containsAny(s string, markers []string) bool {
	for _, mk := range markers {
		if mk != "" && strings.Contains(s, mk) {
			return true
		}
	}
	return false
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, textutil.Fold(s))
	}
	return out
}
