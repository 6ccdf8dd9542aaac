package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/z0mbix/envreport/internal/envinfo"
	"github.com/z0mbix/envreport/internal/report"
)

// Settings is the effective configuration after defaults, file and flags
type Settings struct {
	Python      string
	Accelerator string
	GCC         string
	Host        bool
	Format      string
	Template    string
	Query       string
	LogLevel    string
	LogFormat   string
}

// Defaults returns the built-in settings, with logging overridable through
// ENVREPORT_LOG_LEVEL and ENVREPORT_LOG_FORMAT.
func Defaults() Settings {
	s := Settings{
		Python:      envinfo.DefaultPython,
		Accelerator: envinfo.DefaultAccelerator.Name,
		GCC:         "gcc",
		Format:      string(report.FormatText),
		LogLevel:    "warn",
		LogFormat:   "text",
	}
	if level := os.Getenv("ENVREPORT_LOG_LEVEL"); level != "" {
		s.LogLevel = strings.ToLower(level)
	}
	if format := os.Getenv("ENVREPORT_LOG_FORMAT"); format != "" {
		s.LogFormat = strings.ToLower(format)
	}
	return s
}

// Apply overlays the attributes set in c onto s
func (c *Config) Apply(s *Settings) {
	if c == nil {
		return
	}
	if c.Python != nil {
		s.Python = *c.Python
	}
	if c.Accelerator != nil {
		s.Accelerator = *c.Accelerator
	}
	if c.GCC != nil {
		s.GCC = *c.GCC
	}
	if c.Host != nil {
		s.Host = *c.Host
	}
	if c.Format != nil {
		s.Format = *c.Format
	}
	if c.Template != nil {
		s.Template = *c.Template
	}
	if c.Query != nil {
		s.Query = *c.Query
	}
	if c.Log != nil {
		if c.Log.Level != nil {
			s.LogLevel = *c.Log.Level
		}
		if c.Log.Format != nil {
			s.LogFormat = *c.Log.Format
		}
	}
}

// Validate checks that every setting has a usable value
func (s Settings) Validate() error {
	if s.Python == "" {
		return fmt.Errorf("python interpreter must not be empty")
	}
	if s.GCC == "" {
		return fmt.Errorf("gcc command must not be empty")
	}
	if _, err := envinfo.LookupAccelerator(s.Accelerator); err != nil {
		return err
	}
	format, err := report.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	if format == report.FormatTemplate && s.Template == "" {
		return fmt.Errorf("format %q requires a template", s.Format)
	}
	if format == report.FormatTemplate && s.Query != "" {
		return fmt.Errorf("query cannot be combined with the template format")
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level: %s (supported: debug, info, warn, error)", s.LogLevel)
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s (supported: text, json)", s.LogFormat)
	}
	return nil
}
