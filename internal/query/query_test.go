package query

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/z0mbix/envreport/internal/report"
)

func sample(t *testing.T) *report.Report {
	t.Helper()
	b := report.NewBuilder()
	_ = b.SetString("sys.platform", "linux")
	_ = b.SetBool("CUDA available", true)
	_ = b.SetString("GPU 0,1", "NVIDIA A100")
	_ = b.SetString("GCC", "gcc (GCC) 11.2.0")
	return b.Build()
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []interface{}
	}{
		{"field", `.GCC`, []interface{}{"gcc (GCC) 11.2.0"}},
		{"bool", `.["CUDA available"]`, []interface{}{true}},
		{"device keys", `keys[] | select(startswith("GPU "))`, []interface{}{"GPU 0,1"}},
		{"missing", `.TorchVision`, []interface{}{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(context.Background(), tt.expr, sample(t))
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Run(%q) mismatch (-want +got):\n%s", tt.expr, diff)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := Run(context.Background(), `.[`, sample(t)); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Run(context.Background(), `.GCC | tonumber`, sample(t)); err == nil {
		t.Error("expected runtime error")
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []interface{}{"gcc 12", true, map[string]interface{}{"a": "b"}})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	want := "gcc 12\ntrue\n{\n  \"a\": \"b\"\n}\n"
	if buf.String() != want {
		t.Errorf("Write output = %q, want %q", buf.String(), want)
	}
}
