// ABOUTME: Runtime diagnostics reported by the health and metadata endpoints
// ABOUTME: Host figures come from the platform reader; the rest from the Go runtime

package identity

import (
	"runtime"
	"runtime/debug"

	"github.com/markalston/metadash/internal/client"
)

// hostStats is filled in by the platform-specific reader
type hostStats struct {
	release    string
	memTotal   float64
	memFree    float64
	load1      float64
	haveMemory bool
}

func systemDiagnostics() client.SystemDiagnostics {
	host := readHost()
	cores := runtime.NumCPU()

	diag := client.SystemDiagnostics{
		RuntimeVersion: runtime.Version(),
		OS: client.OSInfo{
			System:  runtime.GOOS,
			Release: host.release,
			Machine: runtime.GOARCH,
		},
		CPU: client.CPUInfo{
			Cores:        cores,
			UsagePercent: loadPercent(host.load1, cores),
		},
	}

	if host.haveMemory && host.memTotal > 0 {
		diag.Memory = client.MemoryInfo{
			Total:       host.memTotal,
			Available:   host.memFree,
			PercentUsed: round1((host.memTotal - host.memFree) / host.memTotal * 100),
		}
	} else {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		diag.Memory = client.MemoryInfo{
			Total:       float64(ms.Sys),
			Available:   float64(ms.Sys - ms.HeapInuse),
			PercentUsed: round1(float64(ms.HeapInuse) / float64(ms.Sys) * 100),
		}
	}
	return diag
}

// loadPercent approximates CPU usage from the one-minute load average
func loadPercent(load1 float64, cores int) float64 {
	if cores <= 0 || load1 <= 0 {
		return 0
	}
	pct := load1 / float64(cores) * 100
	if pct > 100 {
		pct = 100
	}
	return round1(pct)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// moduleDependencies lists the main module's direct dependencies
func moduleDependencies() []string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	deps := make([]string, 0, len(info.Deps))
	for _, d := range info.Deps {
		deps = append(deps, d.Path+"@"+d.Version)
	}
	return deps
}
