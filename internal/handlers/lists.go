package handlers

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/desertthunder/tonearm/internal/listing"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

const (
	defaultListSize = 10
	maxListSize     = 500
	defaultFromYear = 0
	defaultToYear   = 3000
)

// albumList answers getAlbumList (directory shape) and getAlbumList2 (ID3 shape).
func (a *API) albumList(id3 bool) action {
	name := "albumList"
	if id3 {
		name = "albumList2"
	}
	return func(ctx context.Context, req *request) (*subsonic.Node, error) {
		size, err := req.bounded("size", defaultListSize, maxListSize)
		if err != nil {
			return nil, err
		}
		offset, err := req.integer("offset", 0)
		if err != nil {
			return nil, err
		}

		albums, err := a.catalog.Albums(ctx, models.AlbumFilter{})
		if err != nil {
			return nil, err
		}
		albums, err = orderAlbums(req, albums)
		if err != nil {
			return nil, err
		}

		page := listing.Page(albums, size, offset)
		return subsonic.NewNode(name).Group("album", albumNodes("album", page, id3)...), nil
	}
}

// orderAlbums applies the list type named by the type parameter.
func orderAlbums(req *request, albums []models.Album) ([]models.Album, error) {
	name := func(al models.Album) string { return al.Name }

	switch kind := req.str("type"); kind {
	case "", "alphabeticalByName":
		listing.SortAlphabetical(albums, name)
	case "alphabeticalByArtist":
		listing.SortAlphabetical(albums, name)
		listing.SortAlphabetical(albums, func(al models.Album) string { return al.AlbumArtist })
	case "newest":
		listing.SortNewest(albums, func(al models.Album) time.Time { return al.Added })
	case "recent":
		slices.SortStableFunc(albums, func(x, y models.Album) int { return cmp.Compare(y.Year, x.Year) })
	case "random":
		listing.Shuffle(albums)
	case "byGenre":
		genre, err := req.required("genre")
		if err != nil {
			return nil, err
		}
		albums = listing.FilterByGenre(albums, genre, func(al models.Album) string { return al.Genre })
	case "byYear":
		from, err := req.integer("fromYear", defaultFromYear)
		if err != nil {
			return nil, err
		}
		to, err := req.integer("toYear", defaultToYear)
		if err != nil {
			return nil, err
		}
		albums = listing.FilterByYear(albums, from, to, func(al models.Album) int { return al.Year })
	case "frequent", "starred", "highest":
		// play counts, stars and ratings are not tracked
		return nil, nil
	default:
		return nil, subsonic.NewError(subsonic.GenericError, "unknown album list type %q", kind)
	}
	return albums, nil
}

// getRandomSongs returns up to size songs in random order, optionally narrowed by genre and year range.
func (a *API) getRandomSongs(ctx context.Context, req *request) (*subsonic.Node, error) {
	size, err := req.bounded("size", defaultListSize, maxListSize)
	if err != nil {
		return nil, err
	}
	songs, err := a.catalog.Songs(ctx, models.SongFilter{Genre: req.str("genre")})
	if err != nil {
		return nil, err
	}

	if req.str("fromYear") != "" || req.str("toYear") != "" {
		from, err := req.integer("fromYear", defaultFromYear)
		if err != nil {
			return nil, err
		}
		to, err := req.integer("toYear", defaultToYear)
		if err != nil {
			return nil, err
		}
		songs = listing.FilterByYear(songs, from, to, func(s models.Song) int { return s.Year })
	}

	listing.Shuffle(songs)
	songs = listing.Page(songs, size, 0)
	return subsonic.NewNode("randomSongs").Group("song", a.songNodes("song", songs)...), nil
}

func (a *API) getSongsByGenre(ctx context.Context, req *request) (*subsonic.Node, error) {
	genre, err := req.required("genre")
	if err != nil {
		return nil, err
	}
	count, err := req.bounded("count", defaultListSize, maxListSize)
	if err != nil {
		return nil, err
	}
	offset, err := req.integer("offset", 0)
	if err != nil {
		return nil, err
	}

	songs, err := a.catalog.Songs(ctx, models.SongFilter{Genre: genre})
	if err != nil {
		return nil, err
	}
	songs = listing.Page(songs, count, offset)
	return subsonic.NewNode("songsByGenre").Group("song", a.songNodes("song", songs)...), nil
}

// starred answers getStarred and getStarred2. Nothing can be starred yet.
func (a *API) starred(name string) action {
	return func(ctx context.Context, req *request) (*subsonic.Node, error) {
		return subsonic.NewNode(name).
			Group("artist").
			Group("album").
			Group("song"), nil
	}
}

func (a *API) getTopSongs(ctx context.Context, req *request) (*subsonic.Node, error) {
	if _, err := req.required("artist"); err != nil {
		return nil, err
	}
	return subsonic.NewNode("topSongs").Group("song"), nil
}
