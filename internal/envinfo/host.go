package envinfo

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/z0mbix/envreport/internal/report"
)

// HostProbe supplies optional host summary fields appended after the
// library versions. Fields that cannot be read are left out.
type HostProbe interface {
	Summary(ctx context.Context) []report.Field
}

// SystemHost reads the host summary with gopsutil
type SystemHost struct{}

// Summary returns Host OS, Kernel, CPU and Memory fields
func (SystemHost) Summary(ctx context.Context) []report.Field {
	var fields []report.Field

	if info, err := host.InfoWithContext(ctx); err == nil {
		osName := strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		if osName == "" {
			osName = info.OS
		}
		fields = append(fields, report.Field{Key: KeyHostOS, Value: report.String(osName)})
		if info.KernelVersion != "" {
			kernel := strings.TrimSpace(info.KernelVersion + " " + info.KernelArch)
			fields = append(fields, report.Field{Key: KeyKernel, Value: report.String(kernel)})
		}
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		model := infos[0].ModelName
		if model == "" {
			model = infos[0].VendorID
		}
		if count, err := cpu.CountsWithContext(ctx, true); err == nil && count > 0 {
			model = fmt.Sprintf("%s (%d logical cores)", model, count)
		}
		fields = append(fields, report.Field{Key: KeyCPU, Value: report.String(model)})
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		fields = append(fields, report.Field{Key: KeyMemory, Value: report.String(humanize.IBytes(vm.Total))})
	}

	return fields
}
