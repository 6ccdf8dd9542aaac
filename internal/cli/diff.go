package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/z0mbix/envreport/internal/diff"
	"github.com/z0mbix/envreport/internal/report"
)

var exitCode bool

// errDifferences is returned with --exit-code when the reports differ
var errDifferences = errors.New("reports differ")

// NewDiffCmd creates the diff command
func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <saved.json> [other.json]",
		Short: "Compare a saved report with another report or this machine",
		Long: `The diff command compares a report saved with "envreport -f json"
against a second saved report, or against a fresh report collected on this
machine when only one file is given.

Added fields are prefixed with "+", removed fields with "-" and changed
fields with "~". Multi-line values such as the PyTorch build configuration
are compared line by line.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDiff,
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false,
		"Exit with status 1 when the reports differ")
	addProbeFlags(cmd)

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	old, err := loadReportFile(args[0])
	if err != nil {
		return err
	}

	var current *report.Report
	if len(args) == 2 {
		current, err = loadReportFile(args[1])
		if err != nil {
			return err
		}
	} else {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		current, err = collectReport(ctx, cmd, s)
		if err != nil {
			return err
		}
	}

	changes := diff.Compare(old, current)
	useColors := !noColor && isTerminal()
	diff.NewPrinter(cmd.OutOrStdout(), useColors).Print(changes)

	if exitCode && len(changes) > 0 {
		return errDifferences
	}
	return nil
}

func loadReportFile(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &r, nil
}
