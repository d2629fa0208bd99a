package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gradtrack/internal/concurrency"
	"gradtrack/internal/export"
	"gradtrack/internal/mappers"
	"gradtrack/internal/sftpclient"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		outPath    string
		uploadSFTP bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every program to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// never export the sample rows
			if err := a.load(cmd, false); err != nil {
				return err
			}
			programs := mappers.ToEditModels(a.tracker.Records())
			if err := export.WriteProgramsCSVFile(outPath, programs); err != nil {
				return err
			}
			a.log.Info("csv written", zap.String("path", outPath), zap.Int("programs", len(programs)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d program(s) to %s\n", len(programs), outPath)

			if uploadSFTP {
				if err := sftpclient.Upload(cmd.Context(), a.cfg.SFTP.Client(), outPath, filepath.Base(outPath)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to %s:%s\n", a.cfg.SFTP.Host, a.cfg.SFTP.Dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "programs.csv", "output csv path")
	cmd.Flags().BoolVar(&uploadSFTP, "sftp", false, "upload the generated CSV via SFTP")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	opts := concurrency.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Add every row of a CSV export as a new program",
		Long: `Add every row of a CSV file as a new program. Columns are matched by
header label, so a spreadsheet download works as is. Rows that fail
validation are reported by line and skipped; the rest are added one at a
time in file order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			rows, err := export.ReadProgramsCSV(f)
			f.Close()
			if err != nil {
				return err
			}

			programs := mappers.ToEditModels(rows)
			errs := a.tracker.CreateMany(cmd.Context(), programs, opts)

			for _, err := range errs {
				var ie *concurrency.ItemError
				if errors.As(err, &ie) {
					// header is line 1
					fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %v\n", ie.Index+2, ie.Err)
				}
			}
			added := len(programs) - len(errs)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d program(s)\n", added, len(programs))
			if len(errs) > 0 {
				return fmt.Errorf("import: %d row(s) failed", len(errs))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.MaxWorkers, "workers", "w", opts.MaxWorkers, "rows validated in parallel")
	return cmd
}
