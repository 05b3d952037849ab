package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/repositories"
	"github.com/desertthunder/tonearm/internal/shared"
)

// ProgressFunc is called after each file's tags have been read.
type ProgressFunc func(done, total int)

// Options configures a scan.
type Options struct {
	MusicDir string
	ArtNames []string
	Workers  int
	Progress ProgressFunc
}

// Result summarizes a finished scan.
type Result struct {
	Files    int
	Untagged int
	Albums   int
	Songs    int
	Removed  int
	Elapsed  time.Duration
}

// Scanner imports a music directory into the catalog.
type Scanner struct {
	repo   *repositories.CatalogRepository
	logger *log.Logger
	opts   Options
}

// NewScanner creates a Scanner.
func NewScanner(repo *repositories.CatalogRepository, logger *log.Logger, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Scanner{repo: repo, logger: logger, opts: opts}
}

// Scan walks the music directory and synchronizes the catalog with what it finds.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()
	if s.opts.MusicDir == "" {
		return nil, shared.ErrNoMusicDir
	}

	paths, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("found audio files", "count", len(paths), "dir", s.opts.MusicDir)

	tracks, err := s.read(ctx, paths)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: len(tracks)}
	for _, t := range tracks {
		if !t.Tagged {
			result.Untagged++
		}
	}

	if err := s.write(ctx, tracks, result); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	s.logger.Info("scan complete",
		"albums", result.Albums, "songs", result.Songs, "removed", result.Removed, "elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

func (s *Scanner) collect(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.opts.MusicDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open music directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrNoMusicDir, s.opts.MusicDir)
	}

	var paths []string
	err = filepath.WalkDir(s.opts.MusicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && IsAudio(path) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			paths = append(paths, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk music directory: %w", err)
	}
	return paths, nil
}

// read extracts tags with a bounded pool of workers.
func (s *Scanner) read(ctx context.Context, paths []string) ([]track, error) {
	var done atomic.Int64
	p := pool.NewWithResults[track]().WithContext(ctx).WithMaxGoroutines(s.opts.Workers)
	for _, path := range paths {
		p.Go(func(ctx context.Context) (track, error) {
			if err := ctx.Err(); err != nil {
				return track{}, err
			}
			t := readTrack(path)
			if s.opts.Progress != nil {
				s.opts.Progress(int(done.Add(1)), len(paths))
			}
			return t, nil
		})
	}

	tracks, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Path < tracks[j].Path })
	return tracks, nil
}

// write stores albums and songs in one transaction.
func (s *Scanner) write(ctx context.Context, tracks []track, result *Result) error {
	type group struct {
		album  models.Album
		tracks []track
	}

	groups := map[[2]string]*group{}
	var order [][2]string
	for _, t := range tracks {
		key := t.albumKey()
		g, ok := groups[key]
		if !ok {
			g = &group{album: models.Album{AlbumArtist: key[0], Name: key[1]}}
			groups[key] = g
			order = append(order, key)
		}
		if g.album.Year == 0 {
			g.album.Year = t.Year
		}
		if g.album.Genre == "" {
			g.album.Genre = t.Genre
		}
		if g.album.ArtPath == "" {
			g.album.ArtPath = s.findArt(filepath.Dir(t.Path))
		}
		g.tracks = append(g.tracks, t)
	}

	im, err := s.repo.BeginImport(ctx)
	if err != nil {
		return err
	}
	defer im.Rollback()

	for _, key := range order {
		g := groups[key]
		if err := im.SaveAlbum(ctx, &g.album); err != nil {
			return err
		}
		result.Albums++

		for _, t := range g.tracks {
			song := models.Song{
				AlbumID:     g.album.ID,
				Title:       t.Title,
				Artist:      t.Artist,
				AlbumArtist: g.album.AlbumArtist,
				Album:       t.Album,
				Track:       t.Track,
				Disc:        t.Disc,
				Year:        t.Year,
				Genre:       t.Genre,
				Format:      t.Format,
				Path:        t.Path,
				Size:        t.Size,
				Length:      t.Length,
				BitRate:     t.BitRate,
				Lyrics:      t.Lyrics,
			}
			if err := im.SaveSong(ctx, &song); err != nil {
				return err
			}
			result.Songs++
		}
	}

	removed, err := im.Prune(ctx)
	if err != nil {
		return err
	}
	result.Removed = removed

	return im.Commit()
}

// findArt returns the first configured cover image present in dir.
func (s *Scanner) findArt(dir string) string {
	for _, name := range s.opts.ArtNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
