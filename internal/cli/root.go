package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	configPath string
	variables  []string
	noColor    bool
	logLevel   string
	logFormat  string

	// Version information (set by main)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information from build-time variables
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCmd creates the root command. Without a subcommand it behaves
// like "collect".
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "envreport",
		Short: "Collect environment information for bug reports",
		Long: `envreport collects the environment a deep-learning job runs in:
platform, Python interpreter, accelerator devices, compiler versions and
the versions of PyTorch, TorchVision, OpenCV and MMCV.

Paste its output into bug reports, or save it as JSON and compare two
machines with "envreport diff".`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runCollect,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file or directory (default: envreport.hcl if present)")
	rootCmd.PersistentFlags().StringArrayVarP(&variables, "var", "e", nil,
		"Set a config variable (key=value)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format: text or json")

	addCollectFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(NewCollectCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "envreport %s\n", version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// Execute runs the CLI
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseVariables parses key=value variable assignments
func parseVariables(vars []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, v := range vars {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable: %s", v)
		}
		result[key] = value
	}
	return result, nil
}

func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
