package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/z0mbix/envreport/internal/config"
	"github.com/z0mbix/envreport/internal/logging"
)

// loadSettings merges defaults, the config file and command-line flags,
// in that order of precedence from lowest to highest.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	s := config.Defaults()

	vars, err := parseVariables(variables)
	if err != nil {
		return s, err
	}

	path, err := config.FindConfigFile(configPath)
	if err != nil {
		return s, err
	}

	if path != "" {
		parser := config.NewParser()
		for k, v := range vars {
			parser.SetVariable(k, v)
		}

		cfg, diags := parser.ParseFile(path)
		if diags.HasErrors() {
			return s, fmt.Errorf("loading %s: %s", path, diags.Error())
		}
		cfg.Apply(&s)
	}

	flags := cmd.Flags()
	if flags.Changed("python") {
		s.Python = pythonFlag
	}
	if flags.Changed("accelerator") {
		s.Accelerator = acceleratorFlag
	}
	if flags.Changed("gcc") {
		s.GCC = gccFlag
	}
	if flags.Changed("host") {
		s.Host = hostFlag
	}
	if flags.Changed("format") {
		s.Format = formatFlag
	}
	if flags.Changed("template") {
		s.Template = templateFlag
		if !flags.Changed("format") {
			s.Format = "template"
		}
	}
	if flags.Changed("query") {
		s.Query = queryFlag
	}
	if flags.Changed("log-level") {
		s.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		s.LogFormat = logFormat
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func newLogger(s config.Settings, out io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:  s.LogLevel,
		Format: logging.Format(s.LogFormat),
		Output: out,
	})
}
