//go:build linux

package provenance

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts access and status-change times from the underlying
// stat record.
func statTimes(info os.FileInfo) (atime, ctime time.Time) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec), time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime(), info.ModTime()
}
