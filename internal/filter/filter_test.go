package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradtrack/internal/domain"
	"gradtrack/internal/mappers"
)

func sampleRecords() []domain.WireRecord {
	return []domain.WireRecord{
		{"School Name": "Stanford University", "Program Title": "M.Sc. Computer Science", "Location": "Stanford, USA", "Status": "Researching", "Is Favorite": true},
		{"School Name": "ETH Zurich", "Program Title": "Master in Computer Science", "Location": "Zurich, Switzerland", "Status": "To Apply", "Is Favorite": false},
	}
}

func schools[T Record](rs []T) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.GetSchoolName())
	}
	return out
}

func TestProgramsIdentityFilter(t *testing.T) {
	records := sampleRecords()
	got := Programs(records, DefaultControls())
	assert.Equal(t, []string{"Stanford University", "ETH Zurich"}, schools(got))
}

func TestProgramsSingleControls(t *testing.T) {
	testCases := []struct {
		name     string
		controls Controls
		want     []string
	}{
		{"search prefix", Controls{SearchQuery: "stan", FilterStatus: "All"}, []string{"Stanford University"}},
		{"search upper", Controls{SearchQuery: "ZURICH", FilterStatus: "All"}, []string{"ETH Zurich"}},
		{"search title", Controls{SearchQuery: "master in", FilterStatus: "All"}, []string{"ETH Zurich"}},
		{"search location", Controls{SearchQuery: "usa", FilterStatus: "All"}, []string{"Stanford University"}},
		{"search shared", Controls{SearchQuery: "computer", FilterStatus: "All"}, []string{"Stanford University", "ETH Zurich"}},
		{"search miss", Controls{SearchQuery: "oxford", FilterStatus: "All"}, []string{}},
		{"status", Controls{FilterStatus: "To Apply"}, []string{"ETH Zurich"}},
		{"status is case sensitive", Controls{FilterStatus: "to apply"}, []string{}},
		{"starred", Controls{FilterStatus: "All", ShowStarredOnly: true}, []string{"Stanford University"}},
		{"all three", Controls{SearchQuery: "eth", FilterStatus: "To Apply", ShowStarredOnly: true}, []string{}},
		{"empty status means all", Controls{}, []string{"Stanford University", "ETH Zurich"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Programs(sampleRecords(), tc.controls)
			assert.Equal(t, tc.want, schools(got))
		})
	}
}

func TestMatchesStatus(t *testing.T) {
	researching := domain.WireRecord{"Status": "Researching"}
	blank := domain.WireRecord{}

	testCases := []struct {
		name   string
		record domain.WireRecord
		filter string
		want   bool
	}{
		{"All keeps every status", researching, "All", true},
		{"All keeps a record without status", blank, "All", true},
		{"empty filter behaves as All", researching, "", true},
		{"empty filter keeps a record without status", blank, "", true},
		{"exact match", researching, "Researching", true},
		{"other status", researching, "Submitted", false},
		{"lowercase all is a status, not the sentinel", researching, "all", false},
		{"record without status never matches a status", blank, "Researching", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchesStatus(tc.record, tc.filter))
		})
	}
}

func TestProgramsNeverNil(t *testing.T) {
	got := Programs[domain.WireRecord](nil, DefaultControls())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatchesSearchMissingFields(t *testing.T) {
	r := domain.WireRecord{"Program Title": "Data Science"}
	assert.True(t, MatchesSearch(r, ""))
	assert.True(t, MatchesSearch(r, "data"))
	assert.False(t, MatchesSearch(r, "stanford"))
	assert.True(t, MatchesSearch(domain.WireRecord{}, ""))
}

func TestMatchesSearchUnicode(t *testing.T) {
	r := domain.WireRecord{"School Name": "Université PARIS-SACLAY", "Location": "Gif-sur-Yvette, FRANCE"}
	assert.True(t, MatchesSearch(r, "université"))
	assert.True(t, MatchesSearch(r, "UNIVERSITÉ"))
	assert.True(t, MatchesSearch(r, "france"))
}

func TestMatchesStarredSheetStrings(t *testing.T) {
	assert.True(t, MatchesStarred(domain.WireRecord{"Is Favorite": "TRUE"}, true))
	assert.False(t, MatchesStarred(domain.WireRecord{"Is Favorite": "true"}, true))
	assert.False(t, MatchesStarred(domain.WireRecord{}, true))
	assert.True(t, MatchesStarred(domain.WireRecord{}, false))
}

func TestProgramsOverNormalizedShapes(t *testing.T) {
	programs := mappers.ToEditModels(sampleRecords())
	got := Programs(programs, Controls{FilterStatus: "All", ShowStarredOnly: true})
	assert.Equal(t, []string{"Stanford University"}, schools(got))

	display := mappers.ToDisplayAll(sampleRecords())
	gotDisplay := Programs(display, Controls{SearchQuery: "eth", FilterStatus: "All"})
	assert.Equal(t, []string{"ETH Zurich"}, schools(gotDisplay))
}
