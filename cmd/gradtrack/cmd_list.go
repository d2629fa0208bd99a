package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gradtrack/internal/devutil"
	"gradtrack/internal/domain"
	"gradtrack/internal/filter"
	"gradtrack/internal/sample"
	"gradtrack/internal/store"
)

var defaultColumns = []string{
	"school_name",
	"program_title",
	"location",
	"status",
	"fit_label",
	"tuition_label",
	"application_deadline",
	"rank_label",
}

func newListCmd(a *app) *cobra.Command {
	var (
		controls = filter.DefaultControls()
		sortBy   string
		asJSON   bool
		columns  []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List programs, filtered and sorted",
		Long: `List the programs in the spreadsheet.

--search matches school, program title and location, ignoring case.
--status keeps one pipeline stage ("All" keeps every stage).
When the spreadsheet cannot be reached and fallback_to_sample is on,
the built-in sample programs are listed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := filter.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			if st := controls.FilterStatus; st != "" && st != domain.StatusAll && !domain.Status(st).Valid() {
				return fmt.Errorf("unknown status %q: want %s or one of %s", st, domain.StatusAll, statusNames())
			}
			if err := a.load(cmd, true); err != nil {
				return err
			}

			rows := filter.Sort(a.tracker.Visible(controls), key)
			if asJSON {
				return writeJSON(cmd, rows, columns)
			}
			return writeTable(cmd, rows, columns)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&controls.SearchQuery, "search", "s", "", "case-insensitive text to look for")
	f.StringVar(&controls.FilterStatus, "status", domain.StatusAll, "only programs in this status: "+statusNames())
	f.BoolVar(&controls.ShowStarredOnly, "starred", false, "only starred programs")
	f.StringVar(&sortBy, "sort", "", "none, rank, deadline, fit or school")
	f.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	f.StringSliceVar(&columns, "columns", nil, "fields to print, by json name (default "+strings.Join(defaultColumns, ",")+")")
	return cmd
}

func statusNames() string {
	names := make([]string, len(domain.Statuses))
	for i, st := range domain.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// load refreshes the tracker. With fallback allowed and enabled, a fetch
// failure prints a banner and swaps in the sample programs.
func (a *app) load(cmd *cobra.Command, allowFallback bool) error {
	err := a.tracker.Refresh(cmd.Context())
	if err == nil {
		return nil
	}
	var ferr *store.FetchError
	if !allowFallback || !a.cfg.FallbackToSample || !errors.As(err, &ferr) {
		return err
	}

	rows, serr := sample.Programs()
	if serr != nil {
		return errors.Join(err, serr)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load programs from %s: %v\nShowing sample data; changes will not be saved.\n\n", ferr.Store, ferr.Err)
	a.tracker.UseFallback(rows)
	return nil
}

func writeJSON(cmd *cobra.Command, rows []domain.DisplayRecord, columns []string) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if len(columns) == 0 {
		return enc.Encode(rows)
	}
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, devutil.Pick(r, columns...))
	}
	return enc.Encode(out)
}

func writeTable(cmd *cobra.Command, rows []domain.DisplayRecord, columns []string) error {
	if len(columns) == 0 {
		columns = defaultColumns
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, "\t"+strings.Join(header, "\t"))

	for _, r := range rows {
		star := " "
		if r.IsFavorite {
			star = "*"
		}
		fmt.Fprintln(tw, star+"\t"+strings.Join(devutil.Row(r, columns...), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d program(s)\n", len(rows))
	return nil
}
