// Package config loads the optional envreport.hcl file and merges it with
// defaults and command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// DefaultFileName is looked up when no config path is given
const DefaultFileName = "envreport.hcl"

// Parser handles parsing HCL configuration files
type Parser struct {
	parser    *hclparse.Parser
	variables map[string]cty.Value
}

// NewParser creates a new HCL parser
func NewParser() *Parser {
	return &Parser{
		parser:    hclparse.NewParser(),
		variables: make(map[string]cty.Value),
	}
}

// SetVariable sets a variable available as var.<name> in the file
func (p *Parser) SetVariable(name string, value string) {
	p.variables[name] = cty.StringVal(value)
}

// ParseFile parses a single HCL file
func (p *Parser) ParseFile(filename string) (*Config, hcl.Diagnostics) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read file",
			Detail:   err.Error(),
		}}
	}
	return p.Parse(src, filename)
}

// Parse parses HCL source; filename is only used in diagnostics
func (p *Parser) Parse(src []byte, filename string) (*Config, hcl.Diagnostics) {
	file, diags := p.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var config Config
	decodeDiags := gohcl.DecodeBody(file.Body, p.buildEvalContext(), &config)
	diags = append(diags, decodeDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	return &config, diags
}

// buildEvalContext creates the evaluation context for HCL expressions
func (p *Parser) buildEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(p.variables))
	for k, v := range p.variables {
		vars[k] = v
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(vars),
		},
		Functions: standardFunctions(),
	}
}

// FindConfigFile resolves the config file to load. An explicit path must
// exist. Without one, envreport.hcl in the working directory and then in the
// user config directory is used if present; "" means no file.
func FindConfigFile(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("cannot access %s: %w", path, err)
		}
		if info.IsDir() {
			path = filepath.Join(path, DefaultFileName)
			if _, err := os.Stat(path); err != nil {
				return "", fmt.Errorf("cannot access %s: %w", path, err)
			}
		}
		return path, nil
	}

	candidates := []string{DefaultFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "envreport", DefaultFileName))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}
