// Package diff compares two environment reports, typically a saved bug
// report against the current machine.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/z0mbix/envreport/internal/report"
)

// Action is the kind of difference for one field
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionChange Action = "change"
)

// Change is a single field difference
type Change struct {
	Action Action
	Key    string
	Old    *report.Value
	New    *report.Value
}

// Compare returns the differences between old and new. Added and changed
// fields follow new's order, removed fields follow at the end in old's order.
func Compare(old, new *report.Report) []Change {
	var changes []Change

	for _, f := range new.Fields() {
		nv := f.Value
		ov, ok := old.Get(f.Key)
		switch {
		case !ok:
			changes = append(changes, Change{Action: ActionAdd, Key: f.Key, New: &nv})
		case ov != nv:
			changes = append(changes, Change{Action: ActionChange, Key: f.Key, Old: &ov, New: &nv})
		}
	}

	for _, f := range old.Fields() {
		if new.Has(f.Key) {
			continue
		}
		ov := f.Value
		changes = append(changes, Change{Action: ActionRemove, Key: f.Key, Old: &ov})
	}

	return changes
}

// Printer handles printing report differences with colors
type Printer struct {
	out       io.Writer
	useColors bool
}

// NewPrinter creates a new diff printer
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{
		out:       out,
		useColors: useColors,
	}
}

// Print writes every change followed by a summary line
func (p *Printer) Print(changes []Change) {
	if len(changes) == 0 {
		p.printLine(color.FgGreen, "No differences.")
		return
	}

	var added, changed, removed int
	for _, c := range changes {
		switch c.Action {
		case ActionAdd:
			added++
			p.printLine(color.FgGreen, "+ %s: %s", c.Key, formatValue(c.New))
		case ActionRemove:
			removed++
			p.printLine(color.FgRed, "- %s: %s", c.Key, formatValue(c.Old))
		case ActionChange:
			changed++
			p.printModification(c)
		}
	}

	_, _ = fmt.Fprintf(p.out, "\n%d added, %d changed, %d removed.\n", added, changed, removed)
}

func (p *Printer) printModification(c Change) {
	oldStr, newStr := c.Old.String(), c.New.String()

	// Multi-line values such as the build configuration get a line diff
	if strings.Contains(oldStr, "\n") || strings.Contains(newStr, "\n") {
		p.printLine(color.FgYellow, "~ %s: (changed)", c.Key)
		p.printTextDiff(oldStr, newStr)
		return
	}

	p.printLine(color.FgYellow, "~ %s: %s => %s", c.Key, formatValue(c.Old), formatValue(c.New))
}

func (p *Printer) printTextDiff(old, new string) {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			line = strings.TrimSuffix(line, "\n")
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				p.printLine(color.FgRed, "    - %s", line)
			case diffmatchpatch.DiffInsert:
				p.printLine(color.FgGreen, "    + %s", line)
			default:
				_, _ = fmt.Fprintf(p.out, "      %s\n", line)
			}
		}
	}
}

func (p *Printer) printLine(attr color.Attribute, format string, args ...interface{}) {
	if p.useColors {
		c := color.New(attr)
		c.EnableColor()
		_, _ = c.Fprintf(p.out, format+"\n", args...)
		return
	}
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func formatValue(v *report.Value) string {
	if v == nil {
		return "null"
	}
	if v.IsBool() {
		return v.String()
	}
	return fmt.Sprintf("%q", v.String())
}
