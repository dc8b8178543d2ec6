//go:build !linux

// ABOUTME: Host figures fallback for platforms without sysinfo
// ABOUTME: Leaves host figures empty so runtime memory stats are reported

package identity

func readHost() hostStats {
	return hostStats{}
}
