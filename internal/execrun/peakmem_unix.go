//go:build unix

package execrun

import (
	"os"
	"runtime"
	"syscall"
)

// peakMemMB extracts the peak resident set size from the rusage attached to
// a finished process, normalized to megabytes. ru_maxrss is reported in
// bytes on darwin and in kibibytes on Linux and the BSDs.
func peakMemMB(ps *os.ProcessState) float64 {
	ru, ok := ps.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	maxrss := int64(ru.Maxrss)
	if maxrss < 0 {
		return 0
	}
	if runtime.GOOS == "darwin" {
		return float64(maxrss) / (1 << 20)
	}
	return float64(maxrss) / 1024
}
