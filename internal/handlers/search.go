package handlers

import (
	"context"
	"strings"

	"github.com/desertthunder/tonearm/internal/listing"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

const defaultSearchCount = 20

// window is one result kind's count and offset.
type window struct {
	count, offset int
}

func (r *request) window(kind string) (window, error) {
	count, err := r.integer(kind+"Count", defaultSearchCount)
	if err != nil {
		return window{}, err
	}
	offset, err := r.integer(kind+"Offset", 0)
	if err != nil {
		return window{}, err
	}
	return window{count: count, offset: offset}, nil
}

// search answers search2 (directory shapes) and search3 (ID3 shapes).
//
// Artists match on name, albums on album name and songs on title, ignoring case and accents.
// An empty query matches everything.
func (a *API) search(id3 bool) action {
	name := "searchResult2"
	if id3 {
		name = "searchResult3"
	}
	return func(ctx context.Context, req *request) (*subsonic.Node, error) {
		query := strings.Trim(strings.TrimSpace(req.str("query")), `"`)

		artistWin, err := req.window("artist")
		if err != nil {
			return nil, err
		}
		albumWin, err := req.window("album")
		if err != nil {
			return nil, err
		}
		songWin, err := req.window("song")
		if err != nil {
			return nil, err
		}

		artists, err := a.catalog.Artists(ctx)
		if err != nil {
			return nil, err
		}
		artists = matching(artists, query, func(ar models.Artist) string { return ar.Name })
		listing.SortAlphabetical(artists, func(ar models.Artist) string { return ar.Name })

		albums, err := a.catalog.Albums(ctx, models.AlbumFilter{})
		if err != nil {
			return nil, err
		}
		albums = matching(albums, query, func(al models.Album) string { return al.Name })

		songs, err := a.catalog.Songs(ctx, models.SongFilter{})
		if err != nil {
			return nil, err
		}
		songs = matching(songs, query, func(s models.Song) string { return s.Title })

		artists = listing.Page(artists, artistWin.count, artistWin.offset)
		albums = listing.Page(albums, albumWin.count, albumWin.offset)
		songs = listing.Page(songs, songWin.count, songWin.offset)

		return subsonic.NewNode(name).
			Group("artist", artistNodes("artist", artists)...).
			Group("album", albumNodes("album", albums, id3)...).
			Group("song", a.songNodes("song", songs)...), nil
	}
}

func matching[T any](items []T, query string, text func(T) string) []T {
	if query == "" {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if listing.Contains(text(it), query) {
			out = append(out, it)
		}
	}
	return out
}

// getLyrics looks up lyrics by exact artist and title. An unknown song yields an empty lyrics element.
func (a *API) getLyrics(ctx context.Context, req *request) (*subsonic.Node, error) {
	artist, title := req.str("artist"), req.str("title")
	n := subsonic.NewNode("lyrics")
	if artist == "" && title == "" {
		return n, nil
	}

	songs, err := a.catalog.Songs(ctx, models.SongFilter{Artist: artist, Title: title})
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return n, nil
	}
	s := songs[0]
	return n.Attr("artist", s.Artist).Attr("title", s.Title).Text("value", s.Lyrics), nil
}

// getLyricsBySongID returns the song's lyrics as one unsynced structured entry, one line per text line.
func (a *API) getLyricsBySongID(ctx context.Context, req *request) (*subsonic.Node, error) {
	song, err := a.songParam(ctx, req, "id")
	if err != nil {
		return nil, err
	}

	list := subsonic.NewNode("lyricsList")
	text := strings.TrimSpace(strings.ReplaceAll(song.Lyrics, "\r\n", "\n"))
	if text == "" {
		return list.Group("structuredLyrics"), nil
	}

	var lines []*subsonic.Node
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, subsonic.NewNode("line").Text("value", line))
	}
	entry := subsonic.NewNode("structuredLyrics").
		Attr("displayArtist", song.Artist).
		Attr("displayTitle", song.Title).
		Attr("lang", "xxx").
		Attr("synced", false).
		Group("line", lines...)
	return list.Group("structuredLyrics", entry), nil
}
