package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tonearm/internal/models"
)

// Import is a write transaction used by the library scanner.
//
// Albums are keyed by (album artist, album) and songs by path, so re-importing the same files updates rows in place.
type Import struct {
	tx   *sql.Tx
	now  time.Time
	seen map[string]struct{}
}

// BeginImport starts a new import transaction.
func (r *CatalogRepository) BeginImport(ctx context.Context) (*Import, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	return &Import{tx: tx, now: time.Now(), seen: make(map[string]struct{})}, nil
}

// SaveAlbum inserts or updates an album and sets its ID.
//
// An existing cover art path is kept when the new one is empty.
func (im *Import) SaveAlbum(ctx context.Context, album *models.Album) error {
	added := album.Added
	if added.IsZero() {
		added = im.now
	}

	query := `
		INSERT INTO albums (album, albumartist, year, genre, artpath, added)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (albumartist, album) DO UPDATE SET
			year = excluded.year,
			genre = excluded.genre,
			artpath = CASE WHEN excluded.artpath != '' THEN excluded.artpath ELSE albums.artpath END
		RETURNING id, added
	`

	var storedAdded float64
	err := im.tx.QueryRowContext(ctx, query,
		album.Name, album.AlbumArtist, album.Year, album.Genre, album.ArtPath, toUnix(added),
	).Scan(&album.ID, &storedAdded)
	if err != nil {
		return fmt.Errorf("failed to save album %q: %w", album.Name, err)
	}
	album.Added = fromUnix(storedAdded)
	return nil
}

// SaveSong inserts or updates a song by path and sets its ID.
func (im *Import) SaveSong(ctx context.Context, song *models.Song) error {
	added := song.Added
	if added.IsZero() {
		added = im.now
	}

	var albumID sql.NullInt64
	if song.AlbumID != 0 {
		albumID = sql.NullInt64{Int64: song.AlbumID, Valid: true}
	}

	query := `
		INSERT INTO items (album_id, title, artist, albumartist, album, track, disc, year, genre,
			length, bitrate, format, path, filesize, lyrics, added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			album_id = excluded.album_id,
			title = excluded.title,
			artist = excluded.artist,
			albumartist = excluded.albumartist,
			album = excluded.album,
			track = excluded.track,
			disc = excluded.disc,
			year = excluded.year,
			genre = excluded.genre,
			length = excluded.length,
			bitrate = excluded.bitrate,
			format = excluded.format,
			filesize = excluded.filesize,
			lyrics = excluded.lyrics
		RETURNING id, added
	`

	var storedAdded float64
	err := im.tx.QueryRowContext(ctx, query,
		albumID, song.Title, song.Artist, song.AlbumArtist, song.Album, song.Track, song.Disc, song.Year, song.Genre,
		song.Length, song.BitRate, song.Format, song.Path, song.Size, song.Lyrics, toUnix(added),
	).Scan(&song.ID, &storedAdded)
	if err != nil {
		return fmt.Errorf("failed to save song %q: %w", song.Path, err)
	}
	song.Added = fromUnix(storedAdded)
	im.seen[song.Path] = struct{}{}
	return nil
}

// Prune deletes songs not saved during this import and then albums left without songs.
// It returns the number of songs removed.
func (im *Import) Prune(ctx context.Context) (int, error) {
	rows, err := im.tx.QueryContext(ctx, "SELECT id, path FROM items")
	if err != nil {
		return 0, fmt.Errorf("failed to list songs: %w", err)
	}

	var stale []int64
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan song: %w", err)
		}
		if _, ok := im.seen[path]; !ok {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("row iteration error: %w", err)
	}

	for _, id := range stale {
		if _, err := im.tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("failed to delete song %d: %w", id, err)
		}
	}

	if _, err := im.tx.ExecContext(ctx, "DELETE FROM albums WHERE id NOT IN (SELECT album_id FROM items WHERE album_id IS NOT NULL)"); err != nil {
		return 0, fmt.Errorf("failed to delete empty albums: %w", err)
	}
	return len(stale), nil
}

// Commit makes the import visible.
func (im *Import) Commit() error {
	if err := im.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Rollback discards the import. Calling it after Commit is a no-op.
func (im *Import) Rollback() error {
	err := im.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
