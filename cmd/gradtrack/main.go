// Command gradtrack keeps a list of graduate programs in the application
// spreadsheet: list and filter them, add, edit, star and delete rows, and
// move them in and out as CSV.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gradtrack/internal/config"
	"gradtrack/internal/httpx"
	"gradtrack/internal/logging"
	"gradtrack/internal/store"
	"gradtrack/internal/store/sheetapi"
	"gradtrack/internal/store/sqlite"
	"gradtrack/internal/tracker"
	"gradtrack/internal/validation"
)

// app is the state shared by every subcommand, built in PersistentPreRunE.
type app struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg     *config.Config
	log     *zap.Logger
	store   store.Store
	tracker *tracker.Tracker
	closers []func() error
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gradtrack",
		Short:         "Track graduate program applications",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: ./gradtrack.yaml or ./configs/gradtrack.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")
	pf.StringVar(&a.logFormat, "log-format", "", "console or json (overrides log.format)")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newStarCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.cfg = cfg

	a.log, err = logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error {
		_ = a.log.Sync()
		return nil
	})

	a.store, err = a.openStore()
	if err != nil {
		return err
	}
	a.tracker = tracker.New(a.store, a.log)
	a.log.Debug("ready", zap.String("command", cmd.Name()), zap.String("store", a.store.Name()))
	return nil
}

func (a *app) openStore() (store.Store, error) {
	switch a.cfg.Store.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(a.cfg.Store.SQLitePath, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		c := sheetapi.New(a.cfg.Store.BaseURL, a.cfg.Store.Timeout)
		c.Log = a.log
		c.Retry = httpx.Attempts(a.cfg.Store.MaxAttempts)
		return c, nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}

// printError expands validation failures into one line per field.
func printError(w io.Writer, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		fmt.Fprintln(w, "Error: the program is not valid:")
		for _, f := range verr.Fields {
			fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
		}
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
