// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/shared"
)

// FakeCatalog is an in-memory [models.Catalog].
//
// Album aggregates are computed from the stored songs on every call. Setting Err makes every method fail.
type FakeCatalog struct {
	mu     sync.Mutex
	albums []models.Album
	songs  []models.Song
	Err    error

	PathLookups atomic.Int64
}

// NewFakeCatalog creates a FakeCatalog holding copies of albums and songs.
func NewFakeCatalog(albums []models.Album, songs []models.Song) *FakeCatalog {
	return &FakeCatalog{
		albums: append([]models.Album(nil), albums...),
		songs:  append([]models.Song(nil), songs...),
	}
}

func (f *FakeCatalog) withAggregates(a models.Album) models.Album {
	a.SongCount, a.Duration = 0, 0
	for _, s := range f.songs {
		if s.AlbumID == a.ID {
			a.SongCount++
			a.Duration += s.Length
		}
	}
	return a
}

func (f *FakeCatalog) Album(ctx context.Context, id int64) (*models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, a := range f.albums {
		if a.ID == id {
			a = f.withAggregates(a)
			return &a, nil
		}
	}
	return nil, shared.ErrAlbumNotFound
}

func (f *FakeCatalog) Song(ctx context.Context, id int64) (*models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, s := range f.songs {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, shared.ErrSongNotFound
}

func (f *FakeCatalog) SongByPath(ctx context.Context, path string) (*models.Song, error) {
	f.PathLookups.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, s := range f.songs {
		if s.Path == path {
			return &s, nil
		}
	}
	return nil, shared.ErrSongNotFound
}

func (f *FakeCatalog) Albums(ctx context.Context, filter models.AlbumFilter) ([]models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Album
	for _, a := range f.albums {
		if filter.AlbumArtist != "" && a.AlbumArtist != filter.AlbumArtist {
			continue
		}
		out = append(out, f.withAggregates(a))
	}
	return out, nil
}

func (f *FakeCatalog) Songs(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Song
	for _, s := range f.songs {
		switch {
		case filter.AlbumID != 0 && s.AlbumID != filter.AlbumID:
		case filter.Genre != "" && !strings.EqualFold(s.Genre, filter.Genre):
		case filter.Artist != "" && s.Artist != filter.Artist:
		case filter.Title != "" && s.Title != filter.Title:
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeCatalog) Artists(ctx context.Context) ([]models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	counts := map[string]int{}
	for _, a := range f.albums {
		if a.AlbumArtist != "" {
			counts[a.AlbumArtist]++
		}
	}
	var out []models.Artist
	for name, n := range counts {
		out = append(out, models.Artist{Name: name, AlbumCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeCatalog) Genres(ctx context.Context) ([]models.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	byName := map[string]*models.Genre{}
	get := func(name string) *models.Genre {
		if byName[name] == nil {
			byName[name] = &models.Genre{Name: name}
		}
		return byName[name]
	}
	for _, s := range f.songs {
		if s.Genre != "" {
			get(s.Genre).SongCount++
		}
	}
	for _, a := range f.albums {
		if a.Genre != "" {
			get(a.Genre).AlbumCount++
		}
	}
	var out []models.Genre
	for _, g := range byName {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SongCount != out[j].SongCount {
			return out[i].SongCount > out[j].SongCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Scrobble is one call recorded by [RecordingNotifier].
type Scrobble struct {
	Song       models.Song
	At         time.Time
	Submission bool
}

// RecordingNotifier records scrobbles and optionally fails them.
type RecordingNotifier struct {
	ID  string
	Err error

	mu    sync.Mutex
	calls []Scrobble
}

func (r *RecordingNotifier) Name() string { return r.ID }

func (r *RecordingNotifier) Notify(ctx context.Context, song models.Song, at time.Time, submission bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Scrobble{Song: song, At: at, Submission: submission})
	return r.Err
}

// Calls returns a copy of the recorded scrobbles.
func (r *RecordingNotifier) Calls() []Scrobble {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Scrobble(nil), r.calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// RoundTripFunc adapts a function into an [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// SetModTime pins a file's modification time.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime on %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
