//go:build linux

// ABOUTME: Reads Linux host figures using uname and sysinfo
// ABOUTME: Reports kernel release, physical memory, and load average

package identity

import "golang.org/x/sys/unix"

func readHost() hostStats {
	var hs hostStats

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		hs.release = unix.ByteSliceToString(uts.Release[:])
	}

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		unit := float64(si.Unit)
		if unit == 0 {
			unit = 1
		}
		hs.memTotal = float64(si.Totalram) * unit
		hs.memFree = float64(si.Freeram+si.Bufferram) * unit
		hs.load1 = float64(si.Loads[0]) / 65536
		hs.haveMemory = true
	}
	return hs
}
