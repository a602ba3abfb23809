// Package cli implements the datatidy command, which runs the cleaning
// pipeline on a file without the web UI.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datatidy/internal/audit"
	"github.com/JonMunkholm/datatidy/internal/clean"
	"github.com/JonMunkholm/datatidy/internal/core"
	"github.com/JonMunkholm/datatidy/internal/logging"
	"github.com/JonMunkholm/datatidy/internal/table"
)

// options are the flags shared by the pipeline commands.
type options struct {
	sheet    string
	renames  []string
	outDir   string
	maxSize  int64
	logLevel string
}

// NewRootCommand builds the datatidy command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "datatidy",
		Short:         "Clean csv, xlsx and json tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cleanCmd := &cobra.Command{
		Use:   "clean <path>",
		Short: "Clean a file and write cleaned_<name> to the output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	addPipelineFlags(cleanCmd, opts)
	cleanCmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")

	describeCmd := &cobra.Command{
		Use:   "describe <path>",
		Short: "Clean a file and print summary statistics without writing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	addPipelineFlags(describeCmd, opts)

	sheetsCmd := &cobra.Command{
		Use:   "sheets <path>",
		Short: "List the sheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := core.Load(cmd.Context(), args[0], "", opts.maxSize)
			if err != nil {
				return err
			}
			if len(loaded.Sheets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), loaded.Table.Name)
				return nil
			}
			for _, name := range loaded.Sheets {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	root.AddCommand(cleanCmd, describeCmd, sheetsCmd)
	return root
}

func addPipelineFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "workbook sheet (default: first sheet)")
	cmd.Flags().StringArrayVarP(&opts.renames, "rename", "r", nil, "rename a column, as old=new (repeatable)")
	cmd.Flags().Int64Var(&opts.maxSize, "max-size", 0, "maximum file size in bytes (0: no limit)")
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "error: %s\n", core.FormatUserError(err))
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		slog.Debug("command failed", "error", err)
		return 1
	}
	return 0
}

// parseRenames turns old=new arguments into mappings.
func parseRenames(args []string) ([]table.Mapping, error) {
	mappings := make([]table.Mapping, 0, len(args))
	for _, arg := range args {
		oldName, newName, ok := strings.Cut(arg, "=")
		if !ok || oldName == "" {
			return nil, fmt.Errorf("invalid rename %q, expected old=new", arg)
		}
		mappings = append(mappings, table.Mapping{Column: oldName, NewName: newName})
	}
	return mappings, nil
}

// prepare loads, renames and cleans path in a fresh service.
func prepare(ctx context.Context, path string, opts *options) (*core.Service, *clean.Result, error) {
	mappings, err := parseRenames(opts.renames)
	if err != nil {
		return nil, nil, err
	}

	svc := core.NewService(core.Options{
		OutputDir:   opts.outDir,
		MaxFileSize: opts.maxSize,
	}, audit.NewMemoryRecorder(audit.DefaultMaxEntries), nil)

	if _, err := svc.Load(ctx, path, opts.sheet); err != nil {
		return nil, nil, err
	}
	if len(mappings) > 0 {
		if _, err := svc.Rename(ctx, mappings); err != nil {
			return nil, nil, err
		}
	}
	res, err := svc.Clean(ctx)
	if err != nil {
		return nil, nil, err
	}
	return svc, res, nil
}

func runClean(ctx context.Context, out io.Writer, path string, opts *options) error {
	svc, res, err := prepare(ctx, path, opts)
	if err != nil {
		return err
	}
	exp, err := svc.Export(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "rows: %d -> %d (duplicates %d, missing Name/Email %d)\n",
		res.RowsBefore, res.RowsAfter(), res.DuplicatesRemoved, res.RequiredDropped)
	fmt.Fprintf(out, "filled: %d, not numeric: %d\n", res.MissingFilled, res.CoercionFailures)
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", exp.Path, len(exp.Data))
	return nil
}

func runDescribe(ctx context.Context, out io.Writer, path string, opts *options) error {
	svc, _, err := prepare(ctx, path, opts)
	if err != nil {
		return err
	}
	summary, err := svc.Summary(ctx)
	if err != nil {
		return err
	}
	return writeSummary(out, summary)
}

// writeSummary prints one line per column with the statistics that apply
// to its type.
func writeSummary(out io.Writer, s *clean.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s: %d rows, %d columns\n", s.Table, s.Info.Rows, len(s.Info.Columns))
	fmt.Fprintln(tw, "column\ttype\tcount\tunique\ttop\tfreq\tmean\tstd\tmin\t50%\tmax")
	for i, st := range s.Stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			st.Name, s.Info.Columns[i].Type, st.Count,
			intOrDash(st.Unique), strOrDash(st.Top), intOrDash(st.Freq),
			floatOrDash(st.Mean), floatOrDash(st.Std), floatOrDash(st.Min),
			floatOrDash(st.P50), floatOrDash(st.Max),
		)
	}
	return tw.Flush()
}

func intOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func strOrDash(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}

func floatOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return table.FormatNumber(*p)
}
