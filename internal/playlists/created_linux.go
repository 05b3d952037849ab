//go:build linux

package playlists

import (
	"io/fs"
	"syscall"
	"time"
)

// created returns the inode change time, the closest Linux gets to a creation time.
func created(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	}
	return info.ModTime()
}
