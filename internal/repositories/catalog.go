package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/tonearm/internal/listing"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/shared"
)

const albumColumns = `
	a.id, a.album, a.albumartist, a.year, a.genre, a.artpath, a.added,
	COUNT(i.id), COALESCE(SUM(i.length), 0)
`

const songColumns = `
	id, album_id, title, artist, albumartist, album, track, disc, year, genre,
	length, bitrate, format, path, filesize, lyrics, added
`

// CatalogRepository implements [models.Catalog] on top of the albums and items tables.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the given database connection
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Album retrieves an album by ID with its song count and total duration.
func (r *CatalogRepository) Album(ctx context.Context, id int64) (*models.Album, error) {
	query := `SELECT ` + albumColumns + `
		FROM albums a LEFT JOIN items i ON i.album_id = a.id
		WHERE a.id = ?
		GROUP BY a.id
	`
	album, err := scanAlbum(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, shared.ErrAlbumNotFound, "album")
	}
	return album, nil
}

// Song retrieves a song by ID.
func (r *CatalogRepository) Song(ctx context.Context, id int64) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM items WHERE id = ?`
	song, err := scanSong(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, shared.ErrSongNotFound, "song")
	}
	return song, nil
}

// SongByPath retrieves the song stored at an absolute file path.
func (r *CatalogRepository) SongByPath(ctx context.Context, path string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM items WHERE path = ?`
	song, err := scanSong(r.db.QueryRowContext(ctx, query, path))
	if err != nil {
		return nil, notFound(err, shared.ErrSongNotFound, "song")
	}
	return song, nil
}

// Albums lists albums in insertion order, optionally restricted to one album artist.
func (r *CatalogRepository) Albums(ctx context.Context, filter models.AlbumFilter) ([]models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums a LEFT JOIN items i ON i.album_id = a.id`
	var args []any
	if filter.AlbumArtist != "" {
		query += " WHERE a.albumartist = ?"
		args = append(args, filter.AlbumArtist)
	}
	query += " GROUP BY a.id ORDER BY a.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, *album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return albums, nil
}

// Songs lists songs matching the filter, ordered by album, disc and track.
func (r *CatalogRepository) Songs(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	var (
		where []string
		args  []any
	)
	if filter.AlbumID != 0 {
		where = append(where, "album_id = ?")
		args = append(args, filter.AlbumID)
	}
	if filter.Artist != "" {
		where = append(where, "artist = ?")
		args = append(args, filter.Artist)
	}
	if filter.Title != "" {
		where = append(where, "title = ?")
		args = append(args, filter.Title)
	}

	query := `SELECT ` + songColumns + ` FROM items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY album_id, disc, track, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, *song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// SQLite's NOCASE folds ASCII only.
	if filter.Genre != "" {
		songs = listing.FilterByGenre(songs, filter.Genre, func(s models.Song) string { return s.Genre })
	}
	return songs, nil
}

// Artists lists every distinct, non-empty album artist with its album count.
func (r *CatalogRepository) Artists(ctx context.Context) ([]models.Artist, error) {
	query := `
		SELECT albumartist, COUNT(*)
		FROM albums
		WHERE albumartist != ''
		GROUP BY albumartist
		ORDER BY albumartist
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(&a.Name, &a.AlbumCount); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return artists, nil
}

// Genres lists genres found on either songs or albums, most songs first. The empty genre is dropped.
func (r *CatalogRepository) Genres(ctx context.Context) ([]models.Genre, error) {
	query := `
		SELECT g.genre,
			(SELECT COUNT(*) FROM items WHERE items.genre = g.genre),
			(SELECT COUNT(*) FROM albums WHERE albums.genre = g.genre)
		FROM (SELECT genre FROM items UNION SELECT genre FROM albums) g
		WHERE g.genre != ''
		ORDER BY 2 DESC, g.genre ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.Name, &g.SongCount, &g.AlbumCount); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return genres, nil
}

// Stats reports how many albums and songs are stored.
func (r *CatalogRepository) Stats(ctx context.Context) (albums, songs int, err error) {
	err = r.db.QueryRowContext(ctx, "SELECT (SELECT COUNT(*) FROM albums), (SELECT COUNT(*) FROM items)").Scan(&albums, &songs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count catalog: %w", err)
	}
	return albums, songs, nil
}

func scanAlbum(row scanner) (*models.Album, error) {
	var (
		a     models.Album
		added float64
	)
	if err := row.Scan(&a.ID, &a.Name, &a.AlbumArtist, &a.Year, &a.Genre, &a.ArtPath, &added, &a.SongCount, &a.Duration); err != nil {
		return nil, err
	}
	a.Added = fromUnix(added)
	return &a, nil
}

func scanSong(row scanner) (*models.Song, error) {
	var (
		s       models.Song
		albumID sql.NullInt64
		added   float64
	)
	err := row.Scan(
		&s.ID, &albumID, &s.Title, &s.Artist, &s.AlbumArtist, &s.Album, &s.Track, &s.Disc, &s.Year, &s.Genre,
		&s.Length, &s.BitRate, &s.Format, &s.Path, &s.Size, &s.Lyrics, &added,
	)
	if err != nil {
		return nil, err
	}
	s.AlbumID = albumID.Int64
	s.Added = fromUnix(added)
	return &s, nil
}
