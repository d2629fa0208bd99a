package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"gradtrack/internal/domain"
)

// SortKey orders the list view. Programs never reorders; sorting is an
// explicit, separate step.
type SortKey string

const (
	SortNone     SortKey = ""
	SortRank     SortKey = "rank"     // highest rank first, unranked last
	SortDeadline SortKey = "deadline" // earliest first, no deadline last
	SortFit      SortKey = "fit"      // highest fit first
	SortSchool   SortKey = "school"   // A-Z, then program title
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortRank, SortDeadline, SortFit, SortSchool:
		return k, nil
	default:
		return SortNone, fmt.Errorf("filter: unknown sort key %q (want rank, deadline, fit or school)", s)
	}
}

// Sort returns a stably sorted copy of records.
func Sort(records []domain.DisplayRecord, key SortKey) []domain.DisplayRecord {
	out := slices.Clone(records)
	if out == nil {
		out = []domain.DisplayRecord{}
	}

	var compare func(a, b domain.DisplayRecord) int
	switch key {
	case SortRank:
		compare = func(a, b domain.DisplayRecord) int {
			switch {
			case a.CalculatedRank == nil && b.CalculatedRank == nil:
				return 0
			case a.CalculatedRank == nil:
				return 1
			case b.CalculatedRank == nil:
				return -1
			}
			return cmp.Compare(*b.CalculatedRank, *a.CalculatedRank)
		}
	case SortDeadline:
		compare = func(a, b domain.DisplayRecord) int {
			switch {
			case a.ApplicationDeadline == "" && b.ApplicationDeadline == "":
				return 0
			case a.ApplicationDeadline == "":
				return 1
			case b.ApplicationDeadline == "":
				return -1
			}
			// ISO dates compare lexically
			return strings.Compare(a.ApplicationDeadline, b.ApplicationDeadline)
		}
	case SortFit:
		compare = func(a, b domain.DisplayRecord) int {
			return cmp.Compare(b.FitScore, a.FitScore)
		}
	case SortSchool:
		compare = func(a, b domain.DisplayRecord) int {
			if c := strings.Compare(strings.ToLower(a.SchoolName), strings.ToLower(b.SchoolName)); c != 0 {
				return c
			}
			return strings.Compare(strings.ToLower(a.ProgramTitle), strings.ToLower(b.ProgramTitle))
		}
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}
