// Package envinfo collects the environment report attached to bug reports:
// host platform, Python interpreter, accelerator devices, compiler versions
// and the versions of the deep-learning stack.
//
// Every lookup is isolated. A failed lookup either omits its field or
// substitutes a sentinel value; Collect itself never fails.
package envinfo

import (
	"fmt"
	"runtime"
	"strings"
)

// Report field names
const (
	KeyPlatform       = "sys.platform"
	KeyPython         = "Python"
	KeyDeviceCompiler = "NVCC"
	KeyGCC            = "GCC"
	KeyTorch          = "PyTorch"
	KeyTorchBuild     = "PyTorch compiling details"
	KeyTorchVision    = "TorchVision"
	KeyOpenCV         = "OpenCV"
	KeyMMCV           = "MMCV"
	KeyMMCVCompiler   = "MMCV Compiler"

	KeyHostOS = "Host OS"
	KeyKernel = "Kernel"
	KeyCPU    = "CPU"
	KeyMemory = "Memory"

	// devicePrefix starts every per-device key, e.g. "GPU 0,2"
	devicePrefix = "GPU "
)

// Sentinel values
const (
	NotApplicable = "n/a"
	NotAvailable  = "Not Available"
)

// Accelerator describes an accelerator runtime as seen through torch
type Accelerator struct {
	Name     string // torch submodule, e.g. "cuda"
	Label    string // prefix used in field names, e.g. "CUDA"
	Compiler string // device compiler under <home>/bin
}

var (
	// MUSA is the Moore Threads runtime exposed as torch.musa
	MUSA = Accelerator{Name: "musa", Label: "MUSA", Compiler: "mcc"}
	// CUDA is the NVIDIA runtime exposed as torch.cuda
	CUDA = Accelerator{Name: "cuda", Label: "CUDA", Compiler: "nvcc"}
)

// DefaultAccelerator is used when none is configured
var DefaultAccelerator = MUSA

var accelerators = map[string]Accelerator{
	MUSA.Name: MUSA,
	CUDA.Name: CUDA,
}

// LookupAccelerator returns the accelerator profile with the given name
func LookupAccelerator(name string) (Accelerator, error) {
	if name == "" {
		return DefaultAccelerator, nil
	}
	if acc, ok := accelerators[strings.ToLower(name)]; ok {
		return acc, nil
	}
	return Accelerator{}, fmt.Errorf("unknown accelerator %q (supported: musa, cuda)", name)
}

// AvailableKey is the field reporting runtime availability
func (a Accelerator) AvailableKey() string { return a.Label + " available" }

// HomeVar is both the field name and the environment variable for the install path
func (a Accelerator) HomeVar() string { return a.Label + "_HOME" }

// ExtensionCompilerKey is the field for the device compiler the ops were built with
func (a Accelerator) ExtensionCompilerKey() string { return "MMCV " + a.Label + " Compiler" }

// hostPlatform returns the platform identifier in the form Python's
// sys.platform uses.
func hostPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	case "illumos", "solaris":
		return "sunos5"
	default:
		return runtime.GOOS
	}
}
