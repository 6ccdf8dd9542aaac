package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format is an output format for a report
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatHCL      Format = "hcl"
	FormatTemplate Format = "template"
)

// Formats lists the supported output formats
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatHCL, FormatTemplate}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "hcl":
		return FormatHCL, nil
	case "template", "tmpl":
		return FormatTemplate, nil
	}
	return "", fmt.Errorf("unsupported format: %s (supported: text, json, yaml, hcl, template)", s)
}

// RenderOptions controls Render
type RenderOptions struct {
	Format   Format
	Template string // used by FormatTemplate
	Color    bool   // colour keys in text output
}

// Render writes the report to out in the requested format
func Render(out io.Writer, r *Report, opts RenderOptions) error {
	switch opts.Format {
	case FormatText, "":
		return renderText(out, r, opts.Color)
	case FormatJSON:
		return renderJSON(out, r)
	case FormatYAML:
		return renderYAML(out, r)
	case FormatHCL:
		return renderHCL(out, r)
	case FormatTemplate:
		return renderTemplate(out, r, opts.Template)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

func renderText(out io.Writer, r *Report, useColors bool) error {
	key := color.New(color.FgCyan, color.Bold)
	if !useColors {
		key.DisableColor()
	}
	for _, f := range r.Fields() {
		if _, err := key.Fprint(out, f.Key); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, ": %s\n", f.Value); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(out io.Writer, r *Report) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to indent JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(out)
	return err
}

func renderYAML(out io.Writer, r *Report) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err := buf.WriteTo(out)
	return err
}

func renderHCL(out io.Writer, r *Report) error {
	var sb strings.Builder

	width := 0
	for _, f := range r.Fields() {
		if n := len(fmt.Sprintf("%q", f.Key)); n > width {
			width = n
		}
	}

	sb.WriteString("environment = {\n")
	for _, f := range r.Fields() {
		key := fmt.Sprintf("%q", f.Key)
		if f.Value.IsBool() {
			sb.WriteString(fmt.Sprintf("  %-*s = %t\n", width, key, f.Value.AsBool()))
			continue
		}
		val := hclEscaper.Replace(f.Value.String())
		if strings.Contains(val, "\n") {
			body := strings.TrimRight(val, "\n")
			delim := heredocDelimiter(body)
			sb.WriteString(fmt.Sprintf("  %-*s = <<%s\n%s\n%s\n", width, key, delim, body, delim))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-*s = %q\n", width, key, val))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(out, sb.String())
	return err
}

// hclEscaper keeps template sequences in values literal
var hclEscaper = strings.NewReplacer("${", "$${", "%{", "%%{")

// heredocDelimiter returns a marker that no line of body matches
func heredocDelimiter(body string) string {
	lines := make(map[string]bool)
	for _, line := range strings.Split(body, "\n") {
		lines[strings.TrimSpace(line)] = true
	}
	delim := "EOT"
	for i := 1; lines[delim]; i++ {
		delim = fmt.Sprintf("EOT%d", i)
	}
	return delim
}

// renderTemplate executes a text/template with sprig functions. The template
// sees the fields as a map, plus "fields" for ordered iteration.
func renderTemplate(out io.Writer, r *Report, text string) error {
	if text == "" {
		return fmt.Errorf("template format requires a template")
	}
	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	data := r.Map()
	ordered := make([]map[string]interface{}, 0, r.Len())
	for _, f := range r.Fields() {
		ordered = append(ordered, map[string]interface{}{"Key": f.Key, "Value": f.Value.Interface()})
	}

	if err := tmpl.Execute(out, map[string]interface{}{
		"report": data,
		"fields": ordered,
	}); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}
