package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/z0mbix/envreport/internal/envinfo"
	"github.com/z0mbix/envreport/internal/report"
)

type stubCollector struct {
	r *report.Report
}

func (s stubCollector) Collect(context.Context) *report.Report { return s.r }

// useStubCollector replaces the real collector and records the options the
// CLI built for it.
func useStubCollector(t *testing.T) *envinfo.Options {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ENVREPORT_LOG_LEVEL", "")
	t.Setenv("ENVREPORT_LOG_FORMAT", "")

	b := report.NewBuilder()
	_ = b.SetString("sys.platform", "linux")
	_ = b.SetString("Python", "3.10.4")
	_ = b.SetBool("MUSA available", false)
	_ = b.SetString("GCC", "gcc (GCC) 11.2.0")
	_ = b.SetString("MMCV", "2.0.0")
	r := b.Build()

	var got envinfo.Options
	orig := newCollector
	newCollector = func(opts envinfo.Options) reportCollector {
		got = opts
		return stubCollector{r: r}
	}
	t.Cleanup(func() { newCollector = orig })
	return &got
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_DefaultText(t *testing.T) {
	opts := useStubCollector(t)

	out, err := execute(t, "--no-color")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}

	want := "sys.platform: linux\nPython: 3.10.4\nMUSA available: false\nGCC: gcc (GCC) 11.2.0\nMMCV: 2.0.0\n"
	if out != want {
		t.Errorf("output:\n%s\nwant:\n%s", out, want)
	}
	if opts.Python != envinfo.DefaultPython || opts.Accelerator != envinfo.MUSA || opts.GCC != "gcc" {
		t.Errorf("collector options = %+v, want defaults", *opts)
	}
}

func TestCollect_ConfigFileAndFlags(t *testing.T) {
	opts := useStubCollector(t)

	path := filepath.Join(t.TempDir(), "envreport.hcl")
	src := `
python      = "/envs/${var.env}/bin/python"
accelerator = "cuda"
format      = "yaml"
host        = true
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out, err := execute(t, "collect", "--config", path, "-e", "env=mmcv", "--format", "json", "--gcc", "gcc-12")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}

	if !strings.HasPrefix(out, "{\n  \"sys.platform\": \"linux\"") {
		t.Errorf("flag did not override config format, output:\n%s", out)
	}
	if opts.Python != "/envs/mmcv/bin/python" {
		t.Errorf("Python = %q", opts.Python)
	}
	if opts.Accelerator != envinfo.CUDA {
		t.Errorf("Accelerator = %+v, want CUDA", opts.Accelerator)
	}
	if opts.GCC != "gcc-12" || !opts.Host {
		t.Errorf("collector options = %+v", *opts)
	}
}

func TestCollect_Query(t *testing.T) {
	useStubCollector(t)

	out, err := execute(t, "collect", "-q", ".GCC")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if out != "gcc (GCC) 11.2.0\n" {
		t.Errorf("query output = %q", out)
	}
}

func TestCollect_TemplateFlagImpliesFormat(t *testing.T) {
	useStubCollector(t)

	out, err := execute(t, "--template", `MMCV {{ index .report "MMCV" }}`)
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if out != "MMCV 2.0.0" {
		t.Errorf("template output = %q", out)
	}
}

func TestCollect_OutputFile(t *testing.T) {
	useStubCollector(t)
	path := filepath.Join(t.TempDir(), "env.json")

	out, err := execute(t, "collect", "-f", "json", "-o", path)
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty when writing to a file", out)
	}

	r, err := loadReportFile(path)
	if err != nil {
		t.Fatalf("loadReportFile returned error: %v", err)
	}
	if r.Len() != 5 {
		t.Errorf("saved report has %d fields, want 5", r.Len())
	}
}

func TestCollect_InvalidSettings(t *testing.T) {
	useStubCollector(t)

	if _, err := execute(t, "--accelerator", "rocm"); err == nil {
		t.Error("expected error for unknown accelerator")
	}
	if _, err := execute(t, "-f", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDiff_TwoFiles(t *testing.T) {
	useStubCollector(t)
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.json")
	newPath := filepath.Join(dir, "new.json")
	if err := os.WriteFile(oldPath, []byte(`{"GCC": "gcc 11", "MUSA available": true}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newPath, []byte(`{"GCC": "gcc 12", "MUSA available": true}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "diff", "--no-color", oldPath, newPath)
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !strings.Contains(out, `~ GCC: "gcc 11" => "gcc 12"`) {
		t.Errorf("diff output:\n%s", out)
	}

	_, err = execute(t, "diff", "--exit-code", oldPath, newPath)
	if !errors.Is(err, errDifferences) {
		t.Errorf("error = %v, want errDifferences", err)
	}
}

func TestDiff_AgainstCurrent(t *testing.T) {
	useStubCollector(t)
	path := filepath.Join(t.TempDir(), "saved.json")
	saved := `{"sys.platform": "linux", "Python": "3.10.4", "MUSA available": false, "GCC": "gcc (GCC) 11.2.0", "MMCV": "2.0.0"}`
	if err := os.WriteFile(path, []byte(saved), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "diff", "--no-color", "--exit-code", path)
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !strings.Contains(out, "No differences.") {
		t.Errorf("diff output:\n%s", out)
	}
}

func TestDiff_BadFile(t *testing.T) {
	useStubCollector(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"GCC": 11}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "diff", path, path); err == nil {
		t.Error("expected error for numeric report value")
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !strings.Contains(out, "envreport 1.2.3") || !strings.Contains(out, "commit: abc123") {
		t.Errorf("version output:\n%s", out)
	}
}

func TestParseVariables(t *testing.T) {
	vars, err := parseVariables([]string{"env=mmcv", "empty=", "url=a=b"})
	if err != nil {
		t.Fatalf("parseVariables returned error: %v", err)
	}
	if vars["env"] != "mmcv" || vars["empty"] != "" || vars["url"] != "a=b" {
		t.Errorf("parseVariables = %v", vars)
	}

	for _, bad := range []string{"noequals", "=value"} {
		if _, err := parseVariables([]string{bad}); err == nil {
			t.Errorf("parseVariables(%q) expected error", bad)
		}
	}
}

func TestCollect_MalformedVariableWithoutConfig(t *testing.T) {
	useStubCollector(t)

	if _, err := execute(t, "-e", "foo"); err == nil {
		t.Error("expected error for -e without '=' when no config file is present")
	}
}

func TestCollect_OutputFileRenderError(t *testing.T) {
	useStubCollector(t)
	path := filepath.Join(t.TempDir(), "env.txt")

	if _, err := execute(t, "--template", `{{ fail "boom" }}`, "-o", path); err == nil {
		t.Fatal("expected error from failing template")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output file exists after a failed render: %v", err)
	}
}

func TestWriteOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.json")
	if err := writeOutputFile(path, []byte("{}\n")); err != nil {
		t.Fatalf("writeOutputFile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "{}\n" {
		t.Errorf("file content = %q, %v", data, err)
	}

	if err := writeOutputFile(filepath.Join(dir, "missing", "env.json"), nil); err == nil {
		t.Error("expected error for missing parent directory")
	}
}
