// Package admission decides whether a question belongs to the HR domain
// before any retrieval work is done.
package admission

import "strings"

// Filter is a keyword-based domain admission filter. It is a cheap,
// imprecise pre-filter: a question is admitted when it contains at least
// one configured keyword, case-insensitively.
type Filter struct {
	keywords []string
}

// New creates a Filter. Keywords are trimmed and lower-cased; empty entries
// are dropped.
func New(keywords []string) *Filter {
	f := &Filter{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			f.keywords = append(f.keywords, kw)
		}
	}
	return f
}

// IsInDomain reports whether question mentions any domain keyword.
func (f *Filter) IsInDomain(question string) bool {
	_, ok := f.Match(question)
	return ok
}

// Match returns the first keyword found in question.
func (f *Filter) Match(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, kw := range f.keywords {
		if strings.Contains(q, kw) {
			return kw, true
		}
	}
	return "", false
}

// Keywords returns the normalized keyword set.
func (f *Filter) Keywords() []string {
	return append([]string(nil), f.keywords...)
}
