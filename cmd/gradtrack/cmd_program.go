package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gradtrack/internal/domain"
	"gradtrack/internal/mappers"
	"gradtrack/internal/store"
)

// programFlags are the form fields of the add/edit modal.
type programFlags struct {
	p domain.Program
	// raw enum values; assigned only when the flag is set
	status, gre string
}

func (pf *programFlags) register(f *pflag.FlagSet) {
	f.StringVar(&pf.p.SchoolName, "school", "", "school name")
	f.StringVar(&pf.p.ProgramTitle, "title", "", "program title")
	f.StringVar(&pf.p.URL, "url", "", "program web page")
	f.StringVar(&pf.p.Location, "location", "", "city, country")
	f.StringVar(&pf.p.ContactEmail, "email", "", "admissions contact")
	f.IntVar(&pf.p.FitScore, "fit", domain.DefaultFitScore, "fit score, 1-10")
	f.StringVar(&pf.p.CurriculumFocus, "focus", "", "curriculum focus")
	f.StringVar(&pf.p.Pros, "pros", "", "pros")
	f.StringVar(&pf.p.Cons, "cons", "", "cons")
	f.StringVar(&pf.p.ApplicationDeadline, "deadline", "", "application deadline, YYYY-MM-DD")
	f.Float64Var(&pf.p.TuitionCost, "tuition", 0, "tuition cost")
	f.StringVar(&pf.p.Currency, "currency", domain.DefaultCurrency, "currency code: "+strings.Join(domain.Currencies, ", "))
	f.Float64Var(&pf.p.ApplicationFee, "fee", 0, "application fee")
	f.StringVar(&pf.p.FundingScholarships, "funding", "", "funding and scholarships")
	f.StringVar(&pf.p.Duration, "duration", "", "program duration")
	f.StringVar(&pf.gre, "gre", string(domain.DefaultTestPolicy), "GRE/GMAT required: "+testPolicyNames())
	f.IntVar(&pf.p.LettersOfRecQty, "letters", 0, "letters of recommendation needed")
	f.StringVar(&pf.p.EnglishTest, "english", "", "English test")
	f.BoolVar(&pf.p.SOPEssayDone, "sop-done", false, "statement of purpose written")
	f.StringVar(&pf.status, "status", string(domain.DefaultStatus), "application status: "+statusNames())
	f.StringVar(&pf.p.PortalLogin, "portal", "", "application portal login")
	f.StringVar(&pf.p.DecisionDate, "decision", "", "decision date, YYYY-MM-DD")
	f.BoolVar(&pf.p.IsFavorite, "favorite", false, "star the program")
}

func testPolicyNames() string {
	names := make([]string, len(domain.TestPolicies))
	for i, tp := range domain.TestPolicies {
		names[i] = string(tp)
	}
	return strings.Join(names, ", ")
}

// flagFields maps a flag to the edit-model field it sets.
var flagFields = map[string]func(dst *domain.Program, src *programFlags){
	"school":   func(d *domain.Program, s *programFlags) { d.SchoolName = s.p.SchoolName },
	"title":    func(d *domain.Program, s *programFlags) { d.ProgramTitle = s.p.ProgramTitle },
	"url":      func(d *domain.Program, s *programFlags) { d.URL = s.p.URL },
	"location": func(d *domain.Program, s *programFlags) { d.Location = s.p.Location },
	"email":    func(d *domain.Program, s *programFlags) { d.ContactEmail = s.p.ContactEmail },
	"fit":      func(d *domain.Program, s *programFlags) { d.FitScore = s.p.FitScore },
	"focus":    func(d *domain.Program, s *programFlags) { d.CurriculumFocus = s.p.CurriculumFocus },
	"pros":     func(d *domain.Program, s *programFlags) { d.Pros = s.p.Pros },
	"cons":     func(d *domain.Program, s *programFlags) { d.Cons = s.p.Cons },
	"deadline": func(d *domain.Program, s *programFlags) { d.ApplicationDeadline = s.p.ApplicationDeadline },
	"tuition":  func(d *domain.Program, s *programFlags) { d.TuitionCost = s.p.TuitionCost },
	"currency": func(d *domain.Program, s *programFlags) { d.Currency = s.p.Currency },
	"fee":      func(d *domain.Program, s *programFlags) { d.ApplicationFee = s.p.ApplicationFee },
	"funding":  func(d *domain.Program, s *programFlags) { d.FundingScholarships = s.p.FundingScholarships },
	"duration": func(d *domain.Program, s *programFlags) { d.Duration = s.p.Duration },
	"gre":      func(d *domain.Program, s *programFlags) { d.GREGMATRequired = domain.TestPolicy(s.gre) },
	"letters":  func(d *domain.Program, s *programFlags) { d.LettersOfRecQty = s.p.LettersOfRecQty },
	"english":  func(d *domain.Program, s *programFlags) { d.EnglishTest = s.p.EnglishTest },
	"sop-done": func(d *domain.Program, s *programFlags) { d.SOPEssayDone = s.p.SOPEssayDone },
	"status":   func(d *domain.Program, s *programFlags) { d.Status = domain.Status(s.status) },
	"portal":   func(d *domain.Program, s *programFlags) { d.PortalLogin = s.p.PortalLogin },
	"decision": func(d *domain.Program, s *programFlags) { d.DecisionDate = s.p.DecisionDate },
	"favorite": func(d *domain.Program, s *programFlags) { d.IsFavorite = s.p.IsFavorite },
}

// applyChanged copies only the flags the user set onto dst.
func (pf *programFlags) applyChanged(f *pflag.FlagSet, dst *domain.Program) {
	f.Visit(func(fl *pflag.Flag) {
		if set, ok := flagFields[fl.Name]; ok {
			set(dst, pf)
		}
	})
}

func newAddCmd(a *app) *cobra.Command {
	pf := &programFlags{}
	cmd := &cobra.Command{
		Use:   "add --school NAME --title TITLE [fields]",
		Short: "Add a program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := domain.NewProgram("", "")
			pf.applyChanged(cmd.Flags(), &p)
			if err := a.tracker.Create(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", p.Identity())
			return nil
		},
	}
	pf.register(cmd.Flags())
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	pf := &programFlags{}
	cmd := &cobra.Command{
		Use:   "edit SCHOOL TITLE [fields]",
		Short: "Change fields of a program; --school/--title rename it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.find(cmd, args)
			if err != nil {
				return err
			}
			original := p.Identity()
			pf.applyChanged(cmd.Flags(), &p)
			if err := a.tracker.Update(cmd.Context(), original, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", p.Identity())
			return nil
		},
	}
	pf.register(cmd.Flags())
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show SCHOOL TITLE",
		Short: "Show every field of a program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			id := domain.Identity{SchoolName: args[0], ProgramTitle: args[1]}
			p, ok := a.tracker.Find(id)
			if !ok {
				return fmt.Errorf("%s: %w", id, store.ErrNotFound)
			}

			d := mappers.DisplayFromProgram(p)
			payload := mappers.ToWirePayload(p)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, label := range domain.EditableLabels {
				fmt.Fprintf(tw, "%s:\t%v\n", label, display(label, payload[label], d))
			}
			if d.RankLabel != "" {
				fmt.Fprintf(tw, "%s:\t%s\n", domain.LabelCalculatedRank, d.RankLabel)
			}
			return tw.Flush()
		},
	}
}

func display(label string, v any, d domain.DisplayRecord) string {
	switch label {
	case domain.LabelTuitionCost:
		return d.TuitionLabel
	case domain.LabelApplicationFee:
		return d.FeeLabel
	case domain.LabelFitScore:
		return d.FitLabel
	}
	switch x := v.(type) {
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func newStarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "star SCHOOL TITLE",
		Short: "Toggle the favorite star on a program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false); err != nil {
				return err
			}
			id := domain.Identity{SchoolName: args[0], ProgramTitle: args[1]}
			on, err := a.tracker.ToggleFavorite(cmd.Context(), id)
			if err != nil {
				return err
			}
			verb := "Unstarred"
			if on {
				verb = "Starred"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, id)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete SCHOOL TITLE",
		Short: "Delete one program; others at the same school are kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.Identity{SchoolName: args[0], ProgramTitle: args[1]}
			if err := a.tracker.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

// find loads the collection (no fallback: edits need the real rows) and
// returns the program named by args.
func (a *app) find(cmd *cobra.Command, args []string) (domain.Program, error) {
	if err := a.load(cmd, false); err != nil {
		return domain.Program{}, err
	}
	id := domain.Identity{SchoolName: args[0], ProgramTitle: args[1]}
	p, ok := a.tracker.Find(id)
	if !ok {
		return domain.Program{}, fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return p, nil
}
