package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/playlists"
	"github.com/desertthunder/tonearm/internal/shared"
	th "github.com/desertthunder/tonearm/internal/testing"
)

func sampleEntry() *playlists.Entry {
	return &playlists.Entry{
		Name: "Late Night",
		Songs: []models.Song{
			{ID: 1, Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue", Length: 545.2, Path: "/music/so-what.mp3"},
			{ID: 7, Title: "Desert", Artist: "Émilie Simon", Length: 240, Path: "/music/desert.mp3"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleEntry())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(lines))
		}
		if lines[0] != "ID,Title,Artist,Album,Duration,Path" {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if lines[1] != "1,So What,Miles Davis,Kind of Blue,546,/music/so-what.mp3" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		output := string(ExportToMarkdown(sampleEntry()))

		for _, want := range []string{
			"# Late Night",
			"**Tracks**: 2",
			"**Duration**: 13:06",
			"1. Miles Davis - So What (Kind of Blue) [9:06]",
			"2. Émilie Simon - Desert [4:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		output := string(ExportToText(sampleEntry()))
		if !strings.HasPrefix(output, "Playlist: Late Night\nTracks: 2\n\n") {
			t.Errorf("unexpected header, got:\n%s", output)
		}
		if !strings.Contains(output, "2. Émilie Simon - Desert\n") {
			t.Errorf("missing track line, got:\n%s", output)
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		output := string(ExportToText(&playlists.Entry{Name: "Empty"}))
		if output != "Playlist: Empty\nTracks: 0\n\n" {
			t.Errorf("unexpected output %q", output)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{240, "4:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.expected {
			t.Errorf("FormatDuration(%d) = %s, want %s", tt.seconds, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, "MD": Markdown, "markdown": Markdown, "text": Text, "": Text} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseFormat("xlsx"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes to the given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "late.csv")

		got, err := WriteExport(sampleEntry(), CSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "So What") {
			t.Errorf("unexpected content %s", content)
		}
	})

	t.Run("defaults to playlist name", func(t *testing.T) {
		t.Chdir(t.TempDir())

		got, err := WriteExport(sampleEntry(), Markdown, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != "Late Night.md" {
			t.Errorf("unexpected default path %s", got)
		}
		th.AssertFileExists(t, got)
	})
}
