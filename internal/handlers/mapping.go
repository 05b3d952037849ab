package handlers

import (
	"path/filepath"
	"strings"

	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// albumNode maps an album to the ID3 shape used by getAlbum, getArtist, getAlbumList2 and search3.
func albumNode(name string, a models.Album) *subsonic.Node {
	id := ids.EncodeAlbum(a.ID)
	return subsonic.NewNode(name).
		Attr("id", id).
		Attr("name", a.Name).
		Attr("title", a.Name).
		Attr("album", a.Name).
		Attr("artist", a.AlbumArtist).
		Attr("artistId", ids.EncodeArtist(a.AlbumArtist)).
		Attr("parent", ids.EncodeArtist(a.AlbumArtist)).
		Attr("isDir", true).
		Attr("coverArt", id).
		Attr("songCount", a.SongCount).
		Attr("duration", a.Seconds()).
		Attr("playCount", 0).
		Attr("created", a.Added).
		AttrIf(a.Year > 0, "year", a.Year).
		AttrIf(a.Genre != "", "genre", a.Genre)
}

// albumChild maps an album to the directory child shape used by getAlbumList, getMusicDirectory and search2.
func albumChild(name string, a models.Album) *subsonic.Node {
	id := ids.EncodeAlbum(a.ID)
	return subsonic.NewNode(name).
		Attr("id", id).
		Attr("parent", ids.EncodeArtist(a.AlbumArtist)).
		Attr("isDir", true).
		Attr("title", a.Name).
		Attr("album", a.Name).
		Attr("artist", a.AlbumArtist).
		AttrIf(a.Year > 0, "year", a.Year).
		AttrIf(a.Genre != "", "genre", a.Genre).
		Attr("coverArt", id).
		Attr("created", a.Added)
}

// artistNode maps an artist to the shape shared by indexes, artist lists and search results.
func artistNode(name string, a models.Artist) *subsonic.Node {
	return subsonic.NewNode(name).
		Attr("id", ids.EncodeArtist(a.Name)).
		Attr("name", a.Name).
		Attr("albumCount", a.AlbumCount)
}

// songNode maps a song. The path is reported relative to the music directory when it lies inside it.
func (a *API) songNode(name string, s models.Song) *subsonic.Node {
	artist := s.AlbumArtist
	if artist == "" {
		artist = s.Artist
	}
	cover := ids.EncodeSong(s.ID)
	if s.AlbumID > 0 {
		cover = ids.EncodeAlbum(s.AlbumID)
	}

	return subsonic.NewNode(name).
		Attr("id", ids.EncodeSong(s.ID)).
		AttrIf(s.AlbumID > 0, "parent", ids.EncodeAlbum(s.AlbumID)).
		Attr("isDir", false).
		Attr("title", s.Title).
		Attr("album", s.Album).
		Attr("artist", s.Artist).
		AttrIf(s.Track > 0, "track", s.Track).
		AttrIf(s.Disc > 0, "discNumber", s.Disc).
		AttrIf(s.Year > 0, "year", s.Year).
		AttrIf(s.Genre != "", "genre", s.Genre).
		Attr("coverArt", cover).
		Attr("size", s.Size).
		Attr("contentType", s.ContentType()).
		Attr("suffix", s.Suffix()).
		Attr("duration", s.Seconds()).
		Attr("bitRate", s.KBitRate()).
		Attr("path", a.relPath(s.Path)).
		Attr("created", s.Added).
		AttrIf(s.AlbumID > 0, "albumId", ids.EncodeAlbum(s.AlbumID)).
		AttrIf(artist != "", "artistId", ids.EncodeArtist(artist)).
		Attr("type", "music")
}

func (a *API) songNodes(name string, songs []models.Song) []*subsonic.Node {
	nodes := make([]*subsonic.Node, len(songs))
	for i, s := range songs {
		nodes[i] = a.songNode(name, s)
	}
	return nodes
}

func albumNodes(name string, albums []models.Album, id3 bool) []*subsonic.Node {
	nodes := make([]*subsonic.Node, len(albums))
	for i, al := range albums {
		if id3 {
			nodes[i] = albumNode(name, al)
		} else {
			nodes[i] = albumChild(name, al)
		}
	}
	return nodes
}

func artistNodes(name string, artists []models.Artist) []*subsonic.Node {
	nodes := make([]*subsonic.Node, len(artists))
	for i, ar := range artists {
		nodes[i] = artistNode(name, ar)
	}
	return nodes
}

func (a *API) relPath(path string) string {
	if a.musicDir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(a.musicDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
