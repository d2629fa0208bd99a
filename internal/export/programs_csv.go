package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gradtrack/internal/coerce"
	"gradtrack/internal/domain"
)

// programHeader is the sheet's column order. Keep it EXACT so an export can be
// pasted back into the spreadsheet.
var programHeader = []string{
	domain.LabelSchoolName,
	domain.LabelProgramTitle,
	domain.LabelURL,
	domain.LabelLocation,
	domain.LabelContactEmail,
	domain.LabelFitScore,
	domain.LabelCalculatedRank,
	domain.LabelPros,
	domain.LabelCons,
	domain.LabelCurriculumFocus,
	domain.LabelApplicationDeadline,
	domain.LabelTuitionCost,
	domain.LabelCurrency,
	domain.LabelApplicationFee,
	domain.LabelFundingScholarships,
	domain.LabelDuration,
	domain.LabelGREGMATRequired,
	domain.LabelLettersOfRecQty,
	domain.LabelEnglishTest,
	domain.LabelSOPEssayDone,
	domain.LabelStatus,
	domain.LabelPortalLogin,
	domain.LabelDecisionDate,
	domain.LabelIsFavorite,
}

// WriteProgramsCSV writes programs with the sheet header. Booleans are
// written TRUE/FALSE and a missing rank leaves its cell empty.
func WriteProgramsCSV(w io.Writer, programs []domain.Program) error {
	cw := csv.NewWriter(w)
	// match the sheet's own CSV download
	cw.UseCRLF = true

	if err := cw.Write(programHeader); err != nil {
		return err
	}
	for _, p := range programs {
		if err := cw.Write(toProgramRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProgramsCSVFile creates outPath (and its directory) and writes programs to it.
func WriteProgramsCSVFile(outPath string, programs []domain.Program) error {
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create dir: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("export: create csv: %w", err)
	}
	if err := WriteProgramsCSV(f, programs); err != nil {
		f.Close()
		return fmt.Errorf("export: write csv: %w", err)
	}
	return f.Close()
}

func toProgramRow(p domain.Program) []string {
	rank := ""
	if p.CalculatedRank != nil {
		rank = floatToString(*p.CalculatedRank)
	}

	return []string{
		p.SchoolName,
		p.ProgramTitle,
		p.URL,
		p.Location,
		p.ContactEmail,
		strconv.Itoa(p.FitScore),
		rank,
		p.Pros,
		p.Cons,
		p.CurriculumFocus,
		p.ApplicationDeadline,
		floatToString(p.TuitionCost),
		p.Currency,
		floatToString(p.ApplicationFee),
		p.FundingScholarships,
		p.Duration,
		string(p.GREGMATRequired),
		strconv.Itoa(p.LettersOfRecQty),
		p.EnglishTest,
		coerce.String(p.SOPEssayDone),
		string(p.Status),
		p.PortalLogin,
		p.DecisionDate,
		coerce.String(p.IsFavorite),
	}
}

// ReadProgramsCSV reads a sheet export. Columns are matched by header label,
// so order does not matter and unknown columns pass through. Cells stay
// strings; coercion is the normalizer's job.
func ReadProgramsCSV(r io.Reader) ([]domain.WireRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []domain.WireRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("export: read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := []domain.WireRecord{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: read row %d: %w", len(out)+2, err)
		}

		w := make(domain.WireRecord, len(header))
		for i, label := range header {
			if label == "" || i >= len(rec) {
				continue
			}
			w[label] = rec[i]
		}
		out = append(out, w)
	}
	return out, nil
}

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
