package models

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// Album is a collection of songs sharing an album artist and title.
type Album struct {
	ID          int64
	Name        string
	AlbumArtist string
	Year        int
	Genre       string
	ArtPath     string
	Added       time.Time
	SongCount   int
	Duration    float64 // seconds
}

// Song is a single audio file known to the catalog.
type Song struct {
	ID          int64
	AlbumID     int64
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Track       int
	Disc        int
	Year        int
	Genre       string
	Length      float64 // seconds
	BitRate     int     // bits per second
	Format      string
	Path        string
	Size        int64
	Lyrics      string
	Added       time.Time
}

// Artist is an album artist as listed by the catalog.
type Artist struct {
	Name       string
	AlbumCount int
}

// Genre aggregates songs and albums tagged with the same genre.
type Genre struct {
	Name       string
	SongCount  int
	AlbumCount int
}

// AlbumFilter narrows [Catalog.Albums]. Zero values match everything.
type AlbumFilter struct {
	AlbumArtist string
}

// SongFilter narrows [Catalog.Songs]. Zero values match everything.
//
// Artist and Title match exactly; fuzzy matching is left to the caller.
type SongFilter struct {
	AlbumID int64
	Genre   string
	Artist  string
	Title   string
}

// Catalog is the read side of the music library.
type Catalog interface {
	Album(ctx context.Context, id int64) (*Album, error)
	Song(ctx context.Context, id int64) (*Song, error)
	SongByPath(ctx context.Context, path string) (*Song, error)
	Albums(ctx context.Context, filter AlbumFilter) ([]Album, error)
	Songs(ctx context.Context, filter SongFilter) ([]Song, error)
	Artists(ctx context.Context) ([]Artist, error)
	Genres(ctx context.Context) ([]Genre, error)
}

// Suffix returns the lower-case file extension without the dot, falling back to the format tag.
func (s Song) Suffix() string {
	if ext := strings.TrimPrefix(filepath.Ext(s.Path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return strings.ToLower(s.Format)
}

// ContentType maps the file suffix to a MIME type.
func (s Song) ContentType() string {
	switch s.Suffix() {
	case "mp3":
		return "audio/mpeg"
	case "flac":
		return "audio/flac"
	case "ogg", "oga", "opus":
		return "audio/ogg"
	case "m4a", "aac", "alac", "mp4":
		return "audio/mp4"
	case "wav":
		return "audio/wav"
	case "wma":
		return "audio/x-ms-wma"
	default:
		return "application/octet-stream"
	}
}

// Seconds returns the song length rounded up to a whole second.
func (s Song) Seconds() int {
	return int(math.Ceil(s.Length))
}

// KBitRate returns the bit rate in kilobits per second.
func (s Song) KBitRate() int {
	return s.BitRate / 1000
}

// Seconds returns the album duration rounded up to a whole second.
func (a Album) Seconds() int {
	return int(math.Ceil(a.Duration))
}
