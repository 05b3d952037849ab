package handlers

import (
	"cmp"
	"context"
	"slices"

	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/listing"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// getGenres lists genres by song count, most used first. Untagged songs are not a genre.
func (a *API) getGenres(ctx context.Context, req *request) (*subsonic.Node, error) {
	genres, err := a.catalog.Genres(ctx)
	if err != nil {
		return nil, err
	}
	genres = slices.DeleteFunc(genres, func(g models.Genre) bool { return g.Name == "" })
	slices.SortStableFunc(genres, func(x, y models.Genre) int {
		return cmp.Compare(y.SongCount, x.SongCount)
	})

	nodes := make([]*subsonic.Node, len(genres))
	for i, g := range genres {
		nodes[i] = subsonic.NewNode("genre").
			Attr("songCount", g.SongCount).
			Attr("albumCount", g.AlbumCount).
			Text("value", g.Name)
	}
	return subsonic.NewNode("genres").Group("genre", nodes...), nil
}

func (a *API) getArtists(ctx context.Context, req *request) (*subsonic.Node, error) {
	groups, err := a.artistIndex(ctx)
	if err != nil {
		return nil, err
	}
	return subsonic.NewNode("artists").
		Attr("ignoredArticles", "").
		Group("index", groups...), nil
}

func (a *API) getIndexes(ctx context.Context, req *request) (*subsonic.Node, error) {
	groups, err := a.artistIndex(ctx)
	if err != nil {
		return nil, err
	}
	albums, err := a.catalog.Albums(ctx, models.AlbumFilter{})
	if err != nil {
		return nil, err
	}
	var modified int64
	for _, al := range albums {
		modified = max(modified, al.Added.UnixMilli())
	}
	return subsonic.NewNode("indexes").
		Attr("lastModified", modified).
		Attr("ignoredArticles", "").
		Group("index", groups...), nil
}

// artistIndex groups artists in alphabetical order under the folded first letter of their name.
func (a *API) artistIndex(ctx context.Context) ([]*subsonic.Node, error) {
	artists, err := a.catalog.Artists(ctx)
	if err != nil {
		return nil, err
	}
	listing.SortAlphabetical(artists, func(ar models.Artist) string { return ar.Name })

	var groups []*subsonic.Node
	for start := 0; start < len(artists); {
		key := listing.IndexKey(artists[start].Name)
		end := start + 1
		for end < len(artists) && listing.IndexKey(artists[end].Name) == key {
			end++
		}
		groups = append(groups, subsonic.NewNode("index").
			Attr("name", key).
			Group("artist", artistNodes("artist", artists[start:end])...))
		start = end
	}
	return groups, nil
}

// artistAlbums resolves an artist id to its name and albums in alphabetical order.
func (a *API) artistAlbums(ctx context.Context, id string) (string, []models.Album, error) {
	name, err := ids.DecodeArtist(id)
	if err != nil {
		return "", nil, err
	}
	albums, err := a.catalog.Albums(ctx, models.AlbumFilter{AlbumArtist: name})
	if err != nil {
		return "", nil, err
	}
	if len(albums) == 0 {
		return "", nil, subsonic.NotFoundf("artist %q not found", name)
	}
	listing.SortAlphabetical(albums, func(al models.Album) string { return al.Name })
	return name, albums, nil
}

func (a *API) getArtist(ctx context.Context, req *request) (*subsonic.Node, error) {
	id, err := req.required("id")
	if err != nil {
		return nil, err
	}
	name, albums, err := a.artistAlbums(ctx, id)
	if err != nil {
		return nil, err
	}
	return subsonic.NewNode("artist").
		Attr("id", id).
		Attr("name", name).
		Attr("albumCount", len(albums)).
		Group("album", albumNodes("album", albums, true)...), nil
}

// artistInfo answers getArtistInfo and getArtistInfo2. No biographies or images are known.
func (a *API) artistInfo(name string) action {
	return func(ctx context.Context, req *request) (*subsonic.Node, error) {
		id, err := req.required("id")
		if err != nil {
			return nil, err
		}
		if _, err := ids.DecodeArtist(id); err != nil {
			return nil, err
		}
		return subsonic.NewNode(name).
			Elem("biography", "").
			Elem("musicBrainzId", "").
			Elem("lastFmUrl", "").
			Elem("smallImageUrl", "").
			Elem("mediumImageUrl", "").
			Elem("largeImageUrl", ""), nil
	}
}

func (a *API) getAlbum(ctx context.Context, req *request) (*subsonic.Node, error) {
	id, err := req.required("id")
	if err != nil {
		return nil, err
	}
	albumID, err := ids.DecodeAlbum(id)
	if err != nil {
		return nil, err
	}
	album, err := a.catalog.Album(ctx, albumID)
	if err != nil {
		return nil, err
	}
	songs, err := a.catalog.Songs(ctx, models.SongFilter{AlbumID: albumID})
	if err != nil {
		return nil, err
	}
	return albumNode("album", *album).Group("song", a.songNodes("song", songs)...), nil
}

func (a *API) getSong(ctx context.Context, req *request) (*subsonic.Node, error) {
	song, err := a.songParam(ctx, req, "id")
	if err != nil {
		return nil, err
	}
	return a.songNode("song", *song), nil
}

// getMusicDirectory browses by folder: an artist lists its albums, an album lists its songs.
func (a *API) getMusicDirectory(ctx context.Context, req *request) (*subsonic.Node, error) {
	id, err := req.required("id")
	if err != nil {
		return nil, err
	}

	switch ns, _ := ids.NamespaceOf(id); ns {
	case ids.Artist:
		name, albums, err := a.artistAlbums(ctx, id)
		if err != nil {
			return nil, err
		}
		return subsonic.NewNode("directory").
			Attr("id", id).
			Attr("name", name).
			Group("child", albumNodes("child", albums, false)...), nil

	case ids.Album:
		albumID, err := ids.DecodeAlbum(id)
		if err != nil {
			return nil, err
		}
		album, err := a.catalog.Album(ctx, albumID)
		if err != nil {
			return nil, err
		}
		songs, err := a.catalog.Songs(ctx, models.SongFilter{AlbumID: albumID})
		if err != nil {
			return nil, err
		}
		return subsonic.NewNode("directory").
			Attr("id", id).
			Attr("parent", ids.EncodeArtist(album.AlbumArtist)).
			Attr("name", album.Name).
			Group("child", a.songNodes("child", songs)...), nil

	case ids.Song:
		song, err := a.songParam(ctx, req, "id")
		if err != nil {
			return nil, err
		}
		return a.songNode("directory", *song), nil

	default:
		return nil, subsonic.NotFoundf("directory %q not found", id)
	}
}

// songParam resolves the song named by a required id parameter.
func (a *API) songParam(ctx context.Context, req *request, param string) (*models.Song, error) {
	id, err := req.required(param)
	if err != nil {
		return nil, err
	}
	songID, err := ids.DecodeSong(id)
	if err != nil {
		return nil, err
	}
	return a.catalog.Song(ctx, songID)
}
