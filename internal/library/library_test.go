package library

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/repositories"
	"github.com/desertthunder/tonearm/internal/shared"
	tu "github.com/desertthunder/tonearm/internal/testing"
)

func setupRepo(t *testing.T) *repositories.CatalogRepository {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return repositories.NewCatalogRepository(db)
}

func TestFromPath(t *testing.T) {
	tc := []struct {
		path   string
		artist string
		album  string
		title  string
		track  int
	}{
		{path: "/music/Miles Davis/Kind of Blue/01 - So What.flac", artist: "Miles Davis", album: "Kind of Blue", title: "So What", track: 1},
		{path: "/music/Björk/Post/3. Hyperballad.mp3", artist: "Björk", album: "Post", title: "Hyperballad", track: 3},
		{path: "/music/Loose/untitled.mp3", artist: "music", album: "Loose", title: "untitled", track: 0},
	}

	for _, tt := range tc {
		t.Run(tt.path, func(t *testing.T) {
			got := fromPath(tt.path)
			if got.Artist != tt.artist || got.Album != tt.album || got.Title != tt.title || got.Track != tt.track {
				t.Errorf("fromPath() = %+v", got)
			}
		})
	}
}

func TestIsAudio(t *testing.T) {
	for path, want := range map[string]bool{"a.MP3": true, "a.flac": true, "cover.jpg": false, "list.m3u": false} {
		if got := IsAudio(path); got != want {
			t.Errorf("IsAudio(%q) = %v, want %v", path, got, want)
		}
	}
}

// mp3Frames builds n silent MPEG-1 Layer III frames at 128 kbit/s, 44.1 kHz.
func mp3Frames(n int) []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
	return bytes.Repeat(frame, n)
}

// flacHeader builds a FLAC signature and StreamInfo block describing samples at 44.1 kHz stereo.
func flacHeader(samples uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 0x22})
	buf.Write([]byte{0x10, 0x00, 0x10, 0x00})
	buf.Write(make([]byte, 6))

	packed := make([]byte, 8)
	binary.BigEndian.PutUint64(packed, 44100<<44|1<<41|15<<36|samples)
	buf.Write(packed)
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

func TestProbeLength(t *testing.T) {
	t.Run("mp3", func(t *testing.T) {
		data := mp3Frames(100)
		seconds, rate := probeLength(bytes.NewReader(data), "MP3", int64(len(data)))
		if seconds < 2.6 || seconds > 2.62 {
			t.Errorf("expected about 2.61s, got %v", seconds)
		}
		if rate != 128000 {
			t.Errorf("expected 128000 bit/s, got %d", rate)
		}
	})

	t.Run("flac", func(t *testing.T) {
		data := flacHeader(3 * 44100)
		seconds, rate := probeLength(bytes.NewReader(data), "FLAC", 441000)
		if seconds != 3 {
			t.Errorf("expected 3s, got %v", seconds)
		}
		if rate != 441000*8/3 {
			t.Errorf("unexpected bit rate %d", rate)
		}
	})

	t.Run("garbage and unmeasured formats", func(t *testing.T) {
		for _, format := range []string{"MP3", "FLAC", "OGG"} {
			if seconds, rate := probeLength(bytes.NewReader([]byte("not audio")), format, 9); seconds != 0 || rate != 0 {
				t.Errorf("%s: expected zero, got %v %d", format, seconds, rate)
			}
		}
	})
}

func TestScannerReadsLength(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tu.MustWriteFile(t, filepath.Join(dir, "Artist", "Album", "01 - Frames.mp3"), string(mp3Frames(100)))
	tu.MustWriteFile(t, filepath.Join(dir, "Artist", "Album", "02 - Samples.flac"), string(flacHeader(3*44100)))

	repo := setupRepo(t)
	if _, err := NewScanner(repo, shared.NewLogger(io.Discard), Options{MusicDir: dir}).Scan(ctx); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	songs, err := repo.Songs(ctx, models.SongFilter{})
	if err != nil {
		t.Fatalf("Songs() error: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}
	for _, song := range songs {
		if song.Length <= 0 || song.BitRate <= 0 {
			t.Errorf("%s: expected measured length and bit rate, got %v %d", song.Title, song.Length, song.BitRate)
		}
	}

	albums, err := repo.Albums(ctx, models.AlbumFilter{})
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if len(albums) != 1 || albums[0].Seconds() != 6 {
		t.Errorf("expected one album of 6s, got %+v", albums)
	}
}

func TestScanner(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tu.MustWriteFile(t, filepath.Join(dir, "Miles Davis", "Kind of Blue", "01 - So What.flac"), "not audio")
	tu.MustWriteFile(t, filepath.Join(dir, "Miles Davis", "Kind of Blue", "02 - Freddie Freeloader.flac"), "not audio")
	tu.MustWriteFile(t, filepath.Join(dir, "Miles Davis", "Kind of Blue", "cover.jpg"), "jpeg")
	tu.MustWriteFile(t, filepath.Join(dir, "Fleetwood Mac", "Rumours", "02 - Dreams.mp3"), "not audio")
	tu.MustWriteFile(t, filepath.Join(dir, "Fleetwood Mac", "Rumours", "notes.txt"), "ignored")

	repo := setupRepo(t)
	var calls atomic.Int64
	scanner := NewScanner(repo, shared.NewLogger(io.Discard), Options{
		MusicDir: dir,
		ArtNames: []string{"folder.jpg", "cover.jpg"},
		Workers:  2,
		Progress: func(done, total int) {
			calls.Add(1)
			if total != 3 {
				t.Errorf("expected total 3, got %d", total)
			}
		},
	})

	result, err := scanner.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if result.Files != 3 || result.Albums != 2 || result.Songs != 3 || result.Untagged != 3 {
		t.Errorf("unexpected result %+v", result)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 progress calls, got %d", calls.Load())
	}

	albums, err := repo.Albums(ctx, models.AlbumFilter{AlbumArtist: "Miles Davis"})
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected 1 Miles Davis album, got %d", len(albums))
	}
	if albums[0].SongCount != 2 {
		t.Errorf("expected 2 songs, got %d", albums[0].SongCount)
	}
	if filepath.Base(albums[0].ArtPath) != "cover.jpg" {
		t.Errorf("expected cover art to be found, got %q", albums[0].ArtPath)
	}

	songs, err := repo.Songs(ctx, models.SongFilter{AlbumID: albums[0].ID})
	if err != nil {
		t.Fatalf("Songs() error: %v", err)
	}
	if songs[0].Title != "So What" || songs[0].Track != 1 || songs[0].Format != "FLAC" {
		t.Errorf("unexpected first song %+v", songs[0])
	}

	t.Run("rescan removes deleted files", func(t *testing.T) {
		if err := os.Remove(filepath.Join(dir, "Fleetwood Mac", "Rumours", "02 - Dreams.mp3")); err != nil {
			t.Fatal(err)
		}
		scanner.opts.Progress = nil

		result, err := scanner.Scan(ctx)
		if err != nil {
			t.Fatalf("Scan() error: %v", err)
		}
		if result.Removed != 1 {
			t.Errorf("expected 1 removed, got %d", result.Removed)
		}

		albums, songs, err := repo.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if albums != 1 || songs != 2 {
			t.Errorf("expected 1 album and 2 songs, got %d and %d", albums, songs)
		}
	})

	t.Run("missing music dir", func(t *testing.T) {
		s := NewScanner(repo, shared.NewLogger(io.Discard), Options{})
		if _, err := s.Scan(ctx); err == nil {
			t.Error("expected error without a music dir")
		}
	})
}
