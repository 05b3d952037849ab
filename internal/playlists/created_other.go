//go:build !linux

package playlists

import (
	"io/fs"
	"time"
)

func created(info fs.FileInfo) time.Time {
	return info.ModTime()
}
