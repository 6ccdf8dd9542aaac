package envinfo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed probe.py
var probeScript string

// DefaultPython is the interpreter used when none is configured
const DefaultPython = "python3"

// Snapshot is what the Python side reports about itself in one probe.
// Optional libraries are nil when they are not installed.
type Snapshot struct {
	Python      string         `json:"python"`
	Torch       string         `json:"torch"`
	BuildConfig string         `json:"build_config"`
	Available   bool           `json:"available"`
	Devices     []string       `json:"devices"`
	Home        *string        `json:"home"`
	TorchVision *string        `json:"torchvision"`
	OpenCV      string         `json:"opencv"`
	MMCV        string         `json:"mmcv"`
	Ops         *ExtensionInfo `json:"ops"`
}

// ExtensionInfo describes how the compiled ops extension was built
type ExtensionInfo struct {
	Compiler       string `json:"compiler"`
	DeviceCompiler string `json:"device_compiler"`
}

// Runtime inspects the interpreter and the libraries installed in it
type Runtime interface {
	Inspect(ctx context.Context, acc Accelerator) (*Snapshot, error)
}

// PythonRuntime inspects a Python interpreter by running an embedded probe
// script that prints a JSON Snapshot as its last line of output.
type PythonRuntime struct {
	Interpreter string
	Runner      Runner
}

// NewPythonRuntime creates a runtime for the given interpreter
func NewPythonRuntime(interpreter string, runner Runner) *PythonRuntime {
	if interpreter == "" {
		interpreter = DefaultPython
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PythonRuntime{
		Interpreter: interpreter,
		Runner:      runner,
	}
}

// Inspect runs the probe with acc's torch submodule
func (p *PythonRuntime) Inspect(ctx context.Context, acc Accelerator) (*Snapshot, error) {
	out, err := p.Runner.Run(ctx, p.Interpreter, "-c", probeScript, acc.Name)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", p.Interpreter, err)
	}

	// Native extensions can still write to stdout ahead of the result
	var snap Snapshot
	if err := json.Unmarshal([]byte(lastLine(out)), &snap); err != nil {
		return nil, fmt.Errorf("decoding probe output: %w", err)
	}
	return &snap, nil
}
