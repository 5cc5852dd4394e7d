// Package main provides the priceexport command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/priceexport/internal/config"
	"github.com/JonMunkholm/priceexport/internal/core"
	"github.com/JonMunkholm/priceexport/internal/logging"
	"github.com/JonMunkholm/priceexport/internal/sink"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitRowsRejected  = 1
	ExitUsageError    = 2
	ExitPipelineError = 3
)

// exitError carries the process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

// options holds flag values shared by the commands.
type options struct {
	verbose bool
	quiet   bool

	out       string
	report    string
	strict    bool
	delimiter string
	bom       bool
	workers   int
	prefix    string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.code != ExitRowsRejected {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	// Flag and argument errors come straight from cobra
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsageError
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "priceexport",
		Short: "Validate product pricing sheets and export marketplace templates",
		Long: `priceexport reads a seller's product pricing sheet (.csv or .xlsx),
checks every row against the pricing rules and writes the accepted rows in
the marketplace import template layout.

Examples:
  # Export accepted rows into ./exports
  priceexport run precos.xlsx

  # Also save the rejected rows and fail if any row was rejected
  priceexport run --report xlsx --strict precos.csv

  # Only check a sheet
  priceexport validate precos.csv

  # Get a blank source sheet to fill in
  priceexport template modelo.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every rejected row")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log errors")

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Validate a pricing sheet and write the template export",
		Long: `Validate a pricing sheet and write the accepted rows as a template CSV.

The output file is always written, header-only when every row is rejected.

Exit codes:
  0 - Export written
  1 - Export written but rows were rejected (--strict only)
  2 - Usage or configuration error
  3 - The sheet could not be read or the export could not be written`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}
	runCmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output directory, file://dir, gs://bucket/prefix (default from EXPORT_OUTPUT)")
	runCmd.Flags().StringVar(&opts.report, "report", "", "Also write rejected rows: csv or xlsx")
	runCmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "CSV field separator (default from EXPORT_DELIMITER)")
	runCmd.Flags().BoolVar(&opts.bom, "bom", false, "Prefix CSV output with a UTF-8 byte order mark")
	runCmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel validation workers (default from EXPORT_WORKERS)")
	runCmd.Flags().StringVar(&opts.prefix, "prefix", "", "Output file name prefix (default from EXPORT_FILE_PREFIX)")
	runCmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with code 1 when any row is rejected")

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a pricing sheet without writing anything",
		Long: `Check a pricing sheet and list the rejected rows. Nothing is written.

Exit codes:
  0 - Sheet read (rows may still be rejected unless --strict)
  1 - Rows were rejected (--strict only)
  2 - Usage or configuration error
  3 - The sheet could not be read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}
	validateCmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with code 1 when any row is rejected")

	templateCmd := &cobra.Command{
		Use:   "template <out.xlsx>",
		Short: "Write the source template workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd, args[0])
		},
	}

	root.AddCommand(runCmd, validateCmd, templateCmd)
	return root
}

// loadConfig reads configuration and applies command line overrides.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, exitWith(ExitUsageError, err)
	}

	level := cfg.Logging.Level
	switch {
	case opts.verbose:
		level = "debug"
	case opts.quiet:
		level = "error"
	}
	logging.SetupWriter(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Export.Output = opts.out
	}
	if flags.Changed("delimiter") {
		cfg.Export.Delimiter = opts.delimiter
	}
	if flags.Changed("bom") {
		cfg.Export.UTF8BOM = opts.bom
	}
	if flags.Changed("workers") {
		cfg.Export.Workers = opts.workers
	}
	if flags.Changed("prefix") {
		cfg.Export.FilePrefix = opts.prefix
	}
	if flags.Changed("report") {
		cfg.Export.Report = opts.report
	}

	if err := cfg.Validate(); err != nil {
		return nil, exitWith(ExitUsageError, err)
	}
	return cfg, nil
}

func newService(out core.Sink, cfg *config.Config) *core.Service {
	return core.NewService(out, core.ServiceOptions{
		Pipeline: core.PipelineOptions{
			Workers:    cfg.Export.Workers,
			FilePrefix: cfg.Export.FilePrefix,
			CSV: core.CSVOptions{
				Delimiter: cfg.Export.DelimiterRune(),
				UTF8BOM:   cfg.Export.UTF8BOM,
			},
		},
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxConcurrent: 1,
		Timeout:       cfg.Upload.Timeout,
	})
}

func runExport(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	report, err := core.ParseReportFormat(cfg.Export.Report)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	ctx := cmd.Context()
	out, err := sink.Open(ctx, cfg.Export.Output)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	if c, ok := out.(sink.Closer); ok {
		defer c.Close()
	}

	f, err := os.Open(path)
	if err != nil {
		return exitWith(ExitPipelineError, err)
	}
	defer f.Close()

	result, err := newService(out, cfg).Export(ctx, core.ExportRequest{
		FileName: filepath.Base(path),
		Data:     f,
		Report:   report,
	})
	if err != nil {
		return exitWith(ExitPipelineError, errors.New(core.FormatUserError(err)+": "+err.Error()))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d rows: %d accepted, %d rejected\n", result.TotalRows, result.Accepted, result.RejectedCount())
	fmt.Fprintf(w, "Export: %s\n", result.Output)
	if result.Report != "" {
		fmt.Fprintf(w, "Rejected rows: %s\n", result.Report)
	}
	if result.ReportError != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: rejected rows report not saved: %s\n", result.ReportError)
	}
	printRejected(w, result.Rejected)

	if opts.strict && result.RejectedCount() > 0 {
		return exitWith(ExitRowsRejected, fmt.Errorf("%d rows rejected", result.RejectedCount()))
	}
	return nil
}

func runValidate(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return exitWith(ExitPipelineError, err)
	}
	defer f.Close()

	preview, err := newService(nil, cfg).Preview(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return exitWith(ExitPipelineError, errors.New(core.FormatUserError(err)+": "+err.Error()))
	}

	w := cmd.OutOrStdout()
	s := preview.Summary
	fmt.Fprintf(w, "%d rows: %d accepted, %d rejected\n", s.TotalRows, s.Accepted, s.Rejected)
	printRejected(w, preview.Rejected)

	if opts.strict && s.Rejected > 0 {
		return exitWith(ExitRowsRejected, fmt.Errorf("%d rows rejected", s.Rejected))
	}
	return nil
}

// runTemplate writes the source workbook through a directory sink, so a
// partial file never replaces an existing one.
func runTemplate(cmd *cobra.Command, path string) error {
	dir, err := sink.NewDir(filepath.Dir(path))
	if err != nil {
		return exitWith(ExitPipelineError, err)
	}
	location, err := dir.Write(cmd.Context(), filepath.Base(path), core.WriteSourceTemplateXLSX)
	if err != nil {
		return exitWith(ExitPipelineError, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Template: %s\n", location)
	return nil
}

func printRejected(w io.Writer, rows []core.RejectedRow) {
	if len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tSKU\tREASON\tPRICE\tCOST")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Line, r.SKU, r.Reason, r.ListedPriceRaw, r.TotalCostRaw)
	}
	_ = tw.Flush()
}
