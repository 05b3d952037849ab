// package formatter renders resolved playlists as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/tonearm/internal/playlists"
	"github.com/desertthunder/tonearm/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text", "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, s)
	}
}

// Render encodes entry in the given format.
func Render(entry *playlists.Entry, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(entry)
	case Markdown:
		return ExportToMarkdown(entry), nil
	default:
		return ExportToText(entry), nil
	}
}

// ExportToCSV converts a playlist to CSV with columns: ID, Title, Artist, Album, Duration, Path
func ExportToCSV(entry *playlists.Entry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Artist", "Album", "Duration", "Path"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range entry.Songs {
		record := []string{
			strconv.FormatInt(song.ID, 10),
			song.Title,
			song.Artist,
			song.Album,
			strconv.Itoa(song.Seconds()),
			song.Path,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to a numbered Markdown track list.
func ExportToMarkdown(entry *playlists.Entry) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", entry.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", entry.SongCount())
	fmt.Fprintf(&buf, "**Duration**: %s\n\n", FormatDuration(entry.Duration()))

	buf.WriteString("## Tracks\n\n")
	for i, song := range entry.Songs {
		albumPart := ""
		if song.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, song.Artist, song.Title, albumPart, FormatDuration(song.Seconds()))
	}
	return buf.Bytes()
}

// ExportToText converts a playlist to plain text.
func ExportToText(entry *playlists.Entry) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", entry.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", entry.SongCount())
	for i, song := range entry.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.Artist, song.Title)
	}
	return buf.Bytes()
}

// FormatDuration renders whole seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// WriteExport renders entry and writes it to path.
//
// An empty path defaults to the playlist name with the format's extension in the working directory.
func WriteExport(entry *playlists.Entry, format Format, path string) (string, error) {
	if path == "" {
		path = entry.Name + "." + string(format)
	}

	data, err := Render(entry, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
