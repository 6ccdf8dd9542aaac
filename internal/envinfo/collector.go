package envinfo

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/z0mbix/envreport/internal/report"
)

// Options configures New
type Options struct {
	Python      string      // interpreter to probe, DefaultPython if empty
	Accelerator Accelerator // DefaultAccelerator if zero
	GCC         string      // host C compiler binary, "gcc" if empty
	Host        bool        // append host summary fields
	Logger      *slog.Logger
}

// Collector gathers an environment report. Every collaborator is a field so
// tests can replace it.
type Collector struct {
	Accelerator Accelerator
	GCC         string
	Runner      Runner
	Runtime     Runtime
	Host        HostProbe // nil disables the host summary
	Platform    func() string
	Getenv      func(string) string
	IsDir       func(string) bool
	Logger      *slog.Logger
}

// New creates a Collector backed by the real host
func New(opts Options) *Collector {
	runner := ExecRunner{}

	acc := opts.Accelerator
	if acc.Name == "" {
		acc = DefaultAccelerator
	}
	gcc := opts.GCC
	if gcc == "" {
		gcc = "gcc"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Collector{
		Accelerator: acc,
		GCC:         gcc,
		Runner:      runner,
		Runtime:     NewPythonRuntime(opts.Python, runner),
		Platform:    hostPlatform,
		Getenv:      os.Getenv,
		IsDir:       isDir,
		Logger:      logger,
	}
	if opts.Host {
		c.Host = SystemHost{}
	}
	return c
}

// Collect runs every lookup in order and returns the report. It never fails:
// lookups that fail are logged at debug level and either omitted or replaced
// by a sentinel.
func (c *Collector) Collect(ctx context.Context) *report.Report {
	b := report.NewBuilder()
	set := func(key string, v report.Value) {
		if err := b.Set(key, v); err != nil {
			c.logger().Debug("dropping field", "field", key, "error", err)
		}
	}

	set(KeyPlatform, report.String(c.platform()))

	rt := c.Runtime
	if rt == nil {
		rt = NewPythonRuntime("", c.runner())
	}
	snap, err := rt.Inspect(ctx, c.Accelerator)
	if err != nil {
		c.logger().Debug("runtime inspection failed", "accelerator", c.Accelerator.Name, "error", err)
		snap = &Snapshot{}
	}

	set(KeyPython, report.String(orNA(strings.ReplaceAll(snap.Python, "\n", ""))))
	set(c.Accelerator.AvailableKey(), report.Bool(snap.Available))

	if snap.Available {
		for _, g := range GroupDevices(snap.Devices) {
			set(devicePrefix+g.IDs, report.String(g.Name))
		}

		if home := c.acceleratorHome(snap); home != "" {
			set(c.Accelerator.HomeVar(), report.String(home))
			if c.isDir(home) {
				set(KeyDeviceCompiler, report.String(c.deviceCompilerVersion(ctx, home)))
			}
		}
	}

	set(KeyGCC, report.String(c.gccVersion(ctx)))

	set(KeyTorch, report.String(orNA(snap.Torch)))
	set(KeyTorchBuild, report.String(orNA(snap.BuildConfig)))
	if snap.TorchVision != nil {
		set(KeyTorchVision, report.String(*snap.TorchVision))
	}
	set(KeyOpenCV, report.String(orNA(snap.OpenCV)))
	set(KeyMMCV, report.String(orNA(snap.MMCV)))

	if snap.Ops != nil {
		set(KeyMMCVCompiler, report.String(snap.Ops.Compiler))
		set(c.Accelerator.ExtensionCompilerKey(), report.String(snap.Ops.DeviceCompiler))
	} else {
		set(KeyMMCVCompiler, report.String(NotApplicable))
		set(c.Accelerator.ExtensionCompilerKey(), report.String(NotApplicable))
	}

	if c.Host != nil {
		for _, f := range c.Host.Summary(ctx) {
			set(f.Key, f.Value)
		}
	}

	return b.Build()
}

// DeviceGroup is a set of device indices sharing one device name
type DeviceGroup struct {
	IDs  string // ascending, comma-joined indices
	Name string
}

// GroupDevices groups device indices by name. Groups keep the order in which
// each name is first seen.
func GroupDevices(names []string) []DeviceGroup {
	var order []string
	ids := make(map[string][]string)
	for i, name := range names {
		if _, seen := ids[name]; !seen {
			order = append(order, name)
		}
		ids[name] = append(ids[name], strconv.Itoa(i))
	}

	groups := make([]DeviceGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, DeviceGroup{IDs: strings.Join(ids[name], ","), Name: name})
	}
	return groups
}

// acceleratorHome prefers torch's resolved home and falls back to the
// environment variable of the same name.
func (c *Collector) acceleratorHome(snap *Snapshot) string {
	if snap.Home != nil && *snap.Home != "" {
		return *snap.Home
	}
	if c.Getenv == nil {
		return ""
	}
	return c.Getenv(c.Accelerator.HomeVar())
}

func (c *Collector) deviceCompilerVersion(ctx context.Context, home string) string {
	compiler := filepath.Join(home, "bin", c.Accelerator.Compiler)
	out, err := c.runner().Run(ctx, compiler, "-V")
	if err != nil {
		c.logger().Debug("device compiler unavailable", "path", compiler, "error", err)
		return NotAvailable
	}
	if v := lastLine(out); v != "" {
		return v
	}
	return NotAvailable
}

func (c *Collector) gccVersion(ctx context.Context) string {
	gcc := c.GCC
	if gcc == "" {
		gcc = "gcc"
	}
	out, err := c.runner().Run(ctx, gcc, "--version")
	if err != nil {
		c.logger().Debug("host compiler unavailable", "command", gcc, "error", err)
		return NotApplicable
	}
	if v := firstLine(out); v != "" {
		return v
	}
	return NotApplicable
}

func (c *Collector) runner() Runner {
	if c.Runner != nil {
		return c.Runner
	}
	return ExecRunner{}
}

func (c *Collector) platform() string {
	if c.Platform != nil {
		return c.Platform()
	}
	return hostPlatform()
}

func (c *Collector) isDir(path string) bool {
	if c.IsDir != nil {
		return c.IsDir(path)
	}
	return isDir(path)
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func orNA(s string) string {
	if s == "" {
		return NotApplicable
	}
	return s
}
