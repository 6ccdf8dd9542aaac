package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/z0mbix/envreport/internal/config"
	"github.com/z0mbix/envreport/internal/envinfo"
	"github.com/z0mbix/envreport/internal/query"
	"github.com/z0mbix/envreport/internal/report"
)

var (
	formatFlag      string
	templateFlag    string
	queryFlag       string
	pythonFlag      string
	acceleratorFlag string
	gccFlag         string
	hostFlag        bool
	outputPath      string
)

// reportCollector is satisfied by *envinfo.Collector
type reportCollector interface {
	Collect(ctx context.Context) *report.Report
}

// newCollector is replaced in tests
var newCollector = func(opts envinfo.Options) reportCollector {
	return envinfo.New(opts)
}

// NewCollectCmd creates the collect command
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect and print the environment report",
		Long: `The collect command gathers the environment report and prints it.

Fields are printed in a fixed order: platform, Python, accelerator
availability and devices, accelerator home and compiler, GCC, PyTorch and
its build configuration, TorchVision, OpenCV, MMCV and the compilers the
MMCV ops were built with. Lookups that fail are reported as "n/a" or
"Not Available", or left out for optional libraries.`,
		Args: cobra.NoArgs,
		RunE: runCollect,
	}

	addCollectFlags(cmd)

	return cmd
}

func addCollectFlags(cmd *cobra.Command) {
	addProbeFlags(cmd)
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "text",
		"Output format: text, json, yaml, hcl or template")
	cmd.Flags().StringVar(&templateFlag, "template", "",
		"Go template for the template format (sprig functions available)")
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "",
		"jq expression applied to the report")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Write the report to a file instead of stdout")
}

// addProbeFlags adds the flags that control what is collected
func addProbeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pythonFlag, "python", envinfo.DefaultPython,
		"Python interpreter to inspect")
	cmd.Flags().StringVar(&acceleratorFlag, "accelerator", envinfo.DefaultAccelerator.Name,
		"Accelerator runtime: musa or cuda")
	cmd.Flags().StringVar(&gccFlag, "gcc", "gcc",
		"Host C compiler to report")
	cmd.Flags().BoolVar(&hostFlag, "host", false,
		"Append host OS, kernel, CPU and memory fields")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	r, err := collectReport(ctx, cmd, s)
	if err != nil {
		return err
	}

	if outputPath == "" {
		return writeReport(ctx, cmd.OutOrStdout(), r, s, !noColor && isTerminal())
	}

	var buf bytes.Buffer
	if err := writeReport(ctx, &buf, r, s, false); err != nil {
		return err
	}
	return writeOutputFile(outputPath, buf.Bytes())
}

// writeOutputFile writes a fully rendered report so that a failed render
// never leaves a partial file behind.
func writeOutputFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// collectReport runs the collector configured by s
func collectReport(ctx context.Context, cmd *cobra.Command, s config.Settings) (*report.Report, error) {
	logger, err := newLogger(s, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	acc, err := envinfo.LookupAccelerator(s.Accelerator)
	if err != nil {
		return nil, err
	}

	collector := newCollector(envinfo.Options{
		Python:      s.Python,
		Accelerator: acc,
		GCC:         s.GCC,
		Host:        s.Host,
		Logger:      logger,
	})
	r := collector.Collect(ctx)
	logger.Debug("collected environment report", "fields", r.Len())
	return r, nil
}

func writeReport(ctx context.Context, out io.Writer, r *report.Report, s config.Settings, useColors bool) error {
	if s.Query != "" {
		results, err := query.Run(ctx, s.Query, r)
		if err != nil {
			return err
		}
		return query.Write(out, results)
	}

	format, err := report.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	return report.Render(out, r, report.RenderOptions{
		Format:   format,
		Template: s.Template,
		Color:    useColors,
	})
}
