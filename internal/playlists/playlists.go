// Package playlists reads m3u playlists from disk and caches the resolved songs until the file changes.
package playlists

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/shared"
)

// SongLookup resolves a file path to a catalog song.
type SongLookup interface {
	SongByPath(ctx context.Context, path string) (*models.Song, error)
}

// Entry is a parsed playlist.
type Entry struct {
	Path    string
	Name    string
	ModTime time.Time
	Created time.Time
	Songs   []models.Song
}

// SongCount returns the number of resolved songs.
func (e *Entry) SongCount() int {
	return len(e.Songs)
}

// Duration returns the summed song length in whole seconds, rounded up.
func (e *Entry) Duration() int {
	var total float64
	for _, s := range e.Songs {
		total += s.Length
	}
	return int(math.Ceil(total))
}

// Listed pairs a playlist with its slash separated path relative to the playlist root.
type Listed struct {
	Rel   string
	Entry *Entry
}

// Cache maps absolute playlist paths to parsed entries.
//
// An entry is reused while the file's modification time is unchanged. Concurrent misses on the same
// path may both parse the file; the last one stored wins.
type Cache struct {
	songs    SongLookup
	musicDir string

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewCache creates a Cache that resolves relative track paths against musicDir.
func NewCache(songs SongLookup, musicDir string) *Cache {
	return &Cache{songs: songs, musicDir: musicDir, entries: make(map[string]*Entry)}
}

// Get returns the playlist at path, parsing it when it is new or has changed.
func (c *Cache) Get(ctx context.Context, path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("playlist %s: %w", filepath.Base(abs), shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat playlist: %w", err)
	}

	c.mu.Lock()
	cached, ok := c.entries[abs]
	c.mu.Unlock()
	if ok && cached.ModTime.Equal(info.ModTime()) {
		return cached, nil
	}

	entry, err := c.parse(ctx, abs, info)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[abs] = entry
	c.mu.Unlock()
	return entry, nil
}

// List returns every *.m3u and *.m3u8 file under root in lexical order.
func (c *Cache) List(ctx context.Context, root string) ([]Listed, error) {
	var listed []Listed
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsPlaylist(path) {
			return nil
		}

		entry, err := c.Get(ctx, path)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		listed = append(listed, Listed{Rel: filepath.ToSlash(rel), Entry: entry})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return listed, nil
}

// IsPlaylist reports whether path has a playlist extension.
func IsPlaylist(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u", ".m3u8":
		return true
	default:
		return false
	}
}

func (c *Cache) parse(ctx context.Context, abs string, info fs.FileInfo) (*Entry, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	entry := &Entry{
		Path:    abs,
		Name:    strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		ModTime: info.ModTime(),
		Created: created(info),
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimRight(sc.Text(), "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		track := line
		if !filepath.IsAbs(track) {
			track = filepath.Join(c.musicDir, track)
		}

		song, err := c.songs.SongByPath(ctx, filepath.Clean(track))
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", line, err)
		}
		entry.Songs = append(entry.Songs, *song)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return entry, nil
}
