package models

import "testing"

func TestSong(t *testing.T) {
	t.Run("Suffix and ContentType", func(t *testing.T) {
		tc := []struct {
			name   string
			song   Song
			suffix string
			mime   string
		}{
			{name: "mp3", song: Song{Path: "/m/a.MP3"}, suffix: "mp3", mime: "audio/mpeg"},
			{name: "flac", song: Song{Path: "/m/a.flac"}, suffix: "flac", mime: "audio/flac"},
			{name: "format fallback", song: Song{Path: "/m/a", Format: "OGG"}, suffix: "ogg", mime: "audio/ogg"},
			{name: "unknown", song: Song{Path: "/m/a.xyz"}, suffix: "xyz", mime: "application/octet-stream"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.song.Suffix(); got != tt.suffix {
					t.Errorf("Suffix() = %q, want %q", got, tt.suffix)
				}
				if got := tt.song.ContentType(); got != tt.mime {
					t.Errorf("ContentType() = %q, want %q", got, tt.mime)
				}
			})
		}
	})

	t.Run("Seconds rounds up", func(t *testing.T) {
		if got := (Song{Length: 180.2}).Seconds(); got != 181 {
			t.Errorf("Seconds() = %d, want 181", got)
		}
		if got := (Album{Duration: 60}).Seconds(); got != 60 {
			t.Errorf("Seconds() = %d, want 60", got)
		}
	})

	t.Run("KBitRate", func(t *testing.T) {
		if got := (Song{BitRate: 320000}).KBitRate(); got != 320 {
			t.Errorf("KBitRate() = %d, want 320", got)
		}
	})
}
