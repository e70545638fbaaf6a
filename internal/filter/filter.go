// Package filter decides which candidates are safe to turn into a draft.
package filter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/deusflow/trenddraft/internal/news"
)

// Result is the outcome of one predicate for one candidate.
type Result struct {
	Accepted bool
	Filter   string
	Reason   string
}

func accept(filter string) Result {
	return Result{Accepted: true, Filter: filter}
}

func reject(filter, reason string) Result {
	return Result{Filter: filter, Reason: reason}
}

// Predicate is a pure accept/reject check over a candidate.
type Predicate interface {
	Name() string
	Check(c news.Candidate) Result
}

// shortKeywordSuffixes are the inflections a short keyword may carry and still match.
const shortKeywordSuffixes = `(?:s|es|fare|time|ships?|planes?|lords?|zones?)?`

type keywordMatcher struct {
	keyword string
	word    *regexp.Regexp // set for short keywords, which must start a word
}

// Sensitive rejects candidates whose title or description mention a denylisted keyword.
type Sensitive struct {
	matchers []keywordMatcher
}

// NewSensitive builds the sensitive-content predicate. Keywords of three runes or
// fewer must start a word and may only be followed by a known suffix, so "war"
// hits "wars" and "wartime" but not "award" or "warm". Longer ones match as substrings.
func NewSensitive(keywords []string) *Sensitive {
	fold := cases.Fold()
	s := &Sensitive{}
	for _, k := range normalize(keywords) {
		k = fold.String(k)
		m := keywordMatcher{keyword: k}
		if utf8.RuneCountInString(k) <= 3 {
			m.word = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + shortKeywordSuffixes + `\b`)
		}
		s.matchers = append(s.matchers, m)
	}
	return s
}

func (s *Sensitive) Name() string { return "sensitive" }

func (s *Sensitive) Check(c news.Candidate) Result {
	text := cases.Fold().String(c.Text())
	for _, m := range s.matchers {
		if m.matches(text) {
			return reject(s.Name(), fmt.Sprintf("contains sensitive keyword %q", m.keyword))
		}
	}
	return accept(s.Name())
}

func (m keywordMatcher) matches(text string) bool {
	if m.word != nil {
		return m.word.MatchString(text)
	}
	return strings.Contains(text, m.keyword)
}

// Paywall rejects candidates hosted on denylisted domains.
type Paywall struct {
	domains []string
}

func NewPaywall(domains []string) *Paywall {
	return &Paywall{domains: normalize(domains)}
}

func (p *Paywall) Name() string { return "paywall" }

func (p *Paywall) Check(c news.Candidate) Result {
	u := strings.ToLower(c.URL)
	for _, d := range p.domains {
		if strings.Contains(u, d) {
			return reject(p.Name(), fmt.Sprintf("url matches paywalled domain %q", d))
		}
	}
	return accept(p.Name())
}

// Chain applies predicates in order and stops at the first rejection.
type Chain struct {
	predicates []Predicate
}

func NewChain(predicates ...Predicate) *Chain {
	return &Chain{predicates: predicates}
}

// Evaluate returns the first rejection, or an accepting result when every predicate passes.
func (ch *Chain) Evaluate(c news.Candidate) Result {
	for _, p := range ch.predicates {
		if r := p.Check(c); !r.Accepted {
			return r
		}
	}
	return Result{Accepted: true}
}

// Names lists the predicates in evaluation order.
func (ch *Chain) Names() []string {
	names := make([]string, 0, len(ch.predicates))
	for _, p := range ch.predicates {
		names = append(names, p.Name())
	}
	return names
}

// RejectionObserver is told about every rejected candidate.
type RejectionObserver interface {
	RecordRejection(filter string)
}

// Select returns the first candidate, in fetch order, that the chain accepts.
func Select(candidates []news.Candidate, chain *Chain, logger *slog.Logger, observer RejectionObserver) (news.Candidate, bool) {
	if logger == nil {
		logger = slog.Default()
	}
	for i, c := range candidates {
		r := chain.Evaluate(c)
		if r.Accepted {
			logger.Info("candidate accepted", "position", i, "title", c.Title, "url", c.URL)
			return c, true
		}
		logger.Info("candidate rejected", "position", i, "title", c.Title, "filter", r.Filter, "reason", r.Reason)
		if observer != nil {
			observer.RecordRejection(r.Filter)
		}
	}
	return news.Candidate{}, false
}

func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
