// Package filter selects the programs to show for a set of filter controls.
//
// All functions are pure and work over any record shape exposing the
// identity, location, status and favorite flag.
package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gradtrack/internal/domain"
)

// Record is satisfied by domain.WireRecord, domain.Program and domain.DisplayRecord.
type Record interface {
	GetSchoolName() string
	GetProgramTitle() string
	GetLocation() string
	GetStatus() string
	Favorite() bool
}

// Controls are the three independent filter inputs of the list view.
type Controls struct {
	SearchQuery     string
	FilterStatus    string // a status value or domain.StatusAll
	ShowStarredOnly bool
}

// DefaultControls selects everything.
func DefaultControls() Controls {
	return Controls{FilterStatus: domain.StatusAll}
}

// MatchesSearch is a case-insensitive substring test against school name,
// program title and location. An empty query matches everything.
func MatchesSearch(r Record, query string) bool {
	return newMatcher(query).search(r)
}

// MatchesStatus is exact, case-sensitive equality unless filterStatus is "All".
// An empty filterStatus is treated as "All".
func MatchesStatus(r Record, filterStatus string) bool {
	if filterStatus == domain.StatusAll || filterStatus == "" {
		return true
	}
	return r.GetStatus() == filterStatus
}

func MatchesStarred(r Record, showStarredOnly bool) bool {
	return !showStarredOnly || r.Favorite()
}

// Programs keeps the records that pass all three predicates, in input order.
// The result is never nil.
func Programs[T Record](records []T, c Controls) []T {
	m := newMatcher(c.SearchQuery)
	out := make([]T, 0, len(records))
	for _, r := range records {
		if m.search(r) && MatchesStatus(r, c.FilterStatus) && MatchesStarred(r, c.ShowStarredOnly) {
			out = append(out, r)
		}
	}
	return out
}

// matcher holds a lower-casing Caser, which must not be shared across goroutines.
type matcher struct {
	lower cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	m := &matcher{lower: cases.Lower(language.Und)}
	m.query = m.lower.String(query)
	return m
}

func (m *matcher) search(r Record) bool {
	if m.query == "" {
		return true
	}
	return m.contains(r.GetSchoolName()) ||
		m.contains(r.GetProgramTitle()) ||
		m.contains(r.GetLocation())
}

func (m *matcher) contains(field string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(m.lower.String(field), m.query)
}
