package library

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// audioExtensions lists the file types picked up by a scan.
var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".ogg": true, ".oga": true, ".opus": true,
	".m4a": true, ".aac": true, ".alac": true, ".wav": true, ".wma": true,
}

// IsAudio reports whether path has a supported audio extension.
func IsAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// track is the metadata read from one file.
type track struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Track       int
	Disc        int
	Year        int
	Genre       string
	Format      string
	Size        int64
	Length      float64
	BitRate     int
	Lyrics      string
	Tagged      bool
}

// albumKey groups tracks into albums.
func (t track) albumKey() [2]string {
	artist := t.AlbumArtist
	if artist == "" {
		artist = t.Artist
	}
	return [2]string{artist, t.Album}
}

var trackPrefix = regexp.MustCompile(`^(\d+)[\.\-\s]+(.+)`)

// readTrack reads tags from path and fills anything missing from the path layout.
func readTrack(path string) track {
	t := track{Path: path, Format: strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if info, err := f.Stat(); err == nil {
			t.Size = info.Size()
		}
		if m, err := tag.ReadFrom(f); err == nil {
			t.Tagged = true
			t.Title = m.Title()
			t.Artist = m.Artist()
			t.AlbumArtist = m.AlbumArtist()
			t.Album = m.Album()
			t.Track, _ = m.Track()
			t.Disc, _ = m.Disc()
			t.Year = m.Year()
			t.Genre = m.Genre()
			t.Lyrics = m.Lyrics()
			if ft := m.FileType(); ft != tag.UnknownFileType {
				t.Format = string(ft)
			}
		}
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			t.Length, t.BitRate = probeLength(bufio.NewReader(f), t.Format, t.Size)
		}
	}

	if t.Title == "" || t.Artist == "" || t.Album == "" {
		fallback := fromPath(path)
		if t.Title == "" {
			t.Title = fallback.Title
		}
		if t.Artist == "" {
			t.Artist = fallback.Artist
		}
		if t.Album == "" {
			t.Album = fallback.Album
		}
		if t.Track == 0 {
			t.Track = fallback.Track
		}
	}
	return t
}

// fromPath extracts metadata from an Artist/Album/NN - Title.ext layout.
func fromPath(path string) track {
	var t track
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) >= 3 {
		t.Artist = parts[len(parts)-3]
	}
	if len(parts) >= 2 {
		t.Album = parts[len(parts)-2]
	}

	name := filepath.Base(path)
	title := strings.TrimSuffix(name, filepath.Ext(name))
	if m := trackPrefix.FindStringSubmatch(title); len(m) > 2 {
		title = m[2]
		if n, err := strconv.Atoi(m[1]); err == nil {
			t.Track = n
		}
	}
	t.Title = strings.TrimSpace(title)
	return t
}
