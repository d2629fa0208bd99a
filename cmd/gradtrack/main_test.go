package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradtrack runs the CLI against the sqlite backend in dir.
func gradtrack(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("GRADTRACK_STORE_BACKEND", "sqlite")
	t.Setenv("GRADTRACK_STORE_SQLITE_PATH", filepath.Join(dir, "programs.db"))
	t.Setenv("GRADTRACK_LOG_LEVEL", "error")
	return dir
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := gradtrack(t, args...)
	require.Equal(t, 0, code, "gradtrack %v failed:\n%s", args, errOut)
	return out
}

func seed(t *testing.T) {
	t.Helper()
	mustRun(t, "add", "--school", "Stanford University", "--title", "M.Sc. Computer Science",
		"--location", "Stanford, USA", "--fit", "9", "--tuition", "55000", "--deadline", "2026-01-15", "--favorite")
	mustRun(t, "add", "--school", "Stanford University", "--title", "PhD Computer Science", "--status", "To Apply")
	mustRun(t, "add", "--school", "ETH Zurich", "--title", "Master in Computer Science",
		"--location", "Zurich, Switzerland", "--fit", "10", "--tuition", "1500", "--currency", "EUR", "--status", "To Apply")
}

func TestListFilters(t *testing.T) {
	setup(t)
	seed(t)

	out := mustRun(t, "list")
	assert.Contains(t, out, "SCHOOL_NAME")
	assert.Contains(t, out, "$55,000")
	assert.Contains(t, out, "€1,500")
	assert.Contains(t, out, "3 program(s)")

	out = mustRun(t, "list", "--search", "zurich")
	assert.Contains(t, out, "ETH Zurich")
	assert.NotContains(t, out, "Stanford")

	out = mustRun(t, "list", "--status", "To Apply", "--sort", "school")
	assert.Contains(t, out, "2 program(s)")
	assert.Less(t, strings.Index(out, "ETH Zurich"), strings.Index(out, "PhD Computer Science"))

	out = mustRun(t, "list", "--starred")
	assert.Contains(t, out, "M.Sc. Computer Science")
	assert.Contains(t, out, "1 program(s)")
}

func TestListJSONColumns(t *testing.T) {
	setup(t)
	seed(t)

	out := mustRun(t, "list", "--json", "--columns", "school_name,fit_score,is_favorite", "--sort", "fit")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, map[string]any{"school_name": "ETH Zurich", "fit_score": 10.0, "is_favorite": false}, rows[0])
	assert.Equal(t, true, rows[1]["is_favorite"])
}

func TestListRejectsUnknownSort(t *testing.T) {
	setup(t)

	_, errOut, code := gradtrack(t, "list", "--sort", "price")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "price")
}

func TestListRejectsUnknownStatus(t *testing.T) {
	setup(t)

	_, errOut, code := gradtrack(t, "list", "--status", "Done")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown status "Done"`)
	assert.Contains(t, errOut, "Researching, To Apply")
}

func TestAddRejectsInvalidProgram(t *testing.T) {
	setup(t)

	_, errOut, code := gradtrack(t, "add", "--title", "MSc", "--fit", "11", "--status", "Done")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "the program is not valid")
	assert.Contains(t, errOut, "school_name")
	assert.Contains(t, errOut, "fit_score")
	assert.Contains(t, errOut, "status")

	out := mustRun(t, "list")
	assert.Contains(t, out, "0 program(s)")
}

func TestEditAndShow(t *testing.T) {
	setup(t)
	seed(t)

	mustRun(t, "edit", "ETH Zurich", "Master in Computer Science", "--title", "MSc Computer Science", "--status", "Submitted")

	_, _, code := gradtrack(t, "show", "ETH Zurich", "Master in Computer Science")
	assert.Equal(t, 1, code)

	out := mustRun(t, "show", "ETH Zurich", "MSc Computer Science")
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "Submitted")
	assert.Contains(t, out, "€1,500")
	assert.Contains(t, out, "10/10")
	assert.Contains(t, out, "Calculated Rank:")
	// untouched fields survive the edit
	assert.Contains(t, out, "Zurich, Switzerland")
}

func TestStarToggles(t *testing.T) {
	setup(t)
	seed(t)

	assert.Contains(t, mustRun(t, "star", "ETH Zurich", "Master in Computer Science"), "Starred")
	assert.Contains(t, mustRun(t, "star", "Stanford University", "M.Sc. Computer Science"), "Unstarred")

	out := mustRun(t, "list", "--starred")
	assert.Contains(t, out, "ETH Zurich")
	assert.NotContains(t, out, "Stanford")
}

func TestDeleteKeepsSameSchool(t *testing.T) {
	setup(t)
	seed(t)

	mustRun(t, "delete", "Stanford University", "M.Sc. Computer Science")

	out := mustRun(t, "list", "--search", "stanford")
	assert.Contains(t, out, "PhD Computer Science")
	assert.NotContains(t, out, "M.Sc. Computer Science")

	_, errOut, code := gradtrack(t, "delete", "Stanford University", "M.Sc. Computer Science")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not found")
}

func TestExportImport(t *testing.T) {
	dir := setup(t)
	seed(t)

	csvPath := filepath.Join(dir, "out", "programs.csv")
	assert.Contains(t, mustRun(t, "export", "--out", csvPath), "Wrote 3 program(s)")

	// append a broken row
	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString(",Nameless Program\r\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	t.Setenv("GRADTRACK_STORE_SQLITE_PATH", filepath.Join(dir, "copy.db"))
	out, errOut, code := gradtrack(t, "import", csvPath, "--workers", "2")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Imported 3 of 4 program(s)")
	assert.Contains(t, errOut, "line 5")

	out = mustRun(t, "list", "--json", "--columns", "program_title,is_favorite,currency")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	byTitle := map[string]map[string]any{}
	for _, r := range rows {
		byTitle[r["program_title"].(string)] = r
	}
	assert.Equal(t, "EUR", byTitle["Master in Computer Science"]["currency"])
	assert.Equal(t, true, byTitle["M.Sc. Computer Science"]["is_favorite"])
	assert.Equal(t, false, byTitle["PhD Computer Science"]["is_favorite"])
}

func TestImportKeepsFileOrder(t *testing.T) {
	dir := setup(t)

	var b strings.Builder
	b.WriteString("School Name,Program Title\r\n")
	want := make([]string, 40)
	for i := range want {
		want[i] = fmt.Sprintf("School %02d", i)
		fmt.Fprintf(&b, "%s,MSc\r\n", want[i])
	}
	csvPath := filepath.Join(dir, "programs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(b.String()), 0o644))

	assert.Contains(t, mustRun(t, "import", csvPath, "--workers", "8"), "Imported 40 of 40 program(s)")

	out := mustRun(t, "list", "--json", "--columns", "school_name")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i], _ = r["school_name"].(string)
	}
	assert.Equal(t, want, got)
}

func TestListFallsBackToSample(t *testing.T) {
	setup(t)
	t.Setenv("GRADTRACK_STORE_BACKEND", "http")
	t.Setenv("GRADTRACK_STORE_BASE_URL", "http://127.0.0.1:1")

	out, errOut, code := gradtrack(t, "list")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "Failed to load programs from sheetapi")
	assert.Contains(t, out, "Stanford University")
	assert.Contains(t, out, "ETH Zurich")
	assert.Contains(t, out, "92.1")

	// writes never act on sample rows
	_, errOut, code = gradtrack(t, "star", "ETH Zurich", "Master in Computer Science")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "list programs failed")
}

func TestListWithoutFallback(t *testing.T) {
	setup(t)
	t.Setenv("GRADTRACK_STORE_BACKEND", "http")
	t.Setenv("GRADTRACK_STORE_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("GRADTRACK_FALLBACK_TO_SAMPLE", "false")

	out, errOut, code := gradtrack(t, "list")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "list programs failed")
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
