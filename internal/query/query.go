// Package query filters a report with a jq expression.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
	"github.com/z0mbix/envreport/internal/report"
)

// Compile parses and compiles a jq expression
func Compile(expression string) (*gojq.Code, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return code, nil
}

// Run evaluates expression against the report, seen as a JSON object, and
// returns every result.
func Run(ctx context.Context, expression string, r *report.Report) ([]interface{}, error) {
	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	var results []interface{}
	iter := code.RunWithContext(ctx, r.Map())
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

// Write prints one result per line. Strings are printed raw, everything
// else as indented JSON.
func Write(out io.Writer, results []interface{}) error {
	for _, v := range results {
		if s, ok := v.(string); ok {
			if _, err := fmt.Fprintln(out, s); err != nil {
				return err
			}
			continue
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return err
		}
	}
	return nil
}
