package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/tonearm/internal/artwork"
	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/shared"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// chunkSize is the read size of the streaming loop.
const chunkSize = 64 << 10

// stream sends a song's file unchanged. maxBitRate and format are accepted and ignored; there is no range support.
func (a *API) stream(download bool) rawAction {
	return func(w http.ResponseWriter, req *request) error {
		ctx := req.Context()
		song, err := a.songParam(ctx, req, "id")
		if err != nil {
			return err
		}

		f, err := os.Open(song.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return subsonic.NotFoundf("file for song %s is missing", ids.EncodeSong(song.ID))
		}
		if err != nil {
			return fmt.Errorf("failed to open song: %w", err)
		}
		defer f.Close()

		h := w.Header()
		h.Set("Content-Type", song.ContentType())
		if info, err := f.Stat(); err == nil {
			h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
		}
		if download {
			h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(song.Path)))
		}
		w.WriteHeader(http.StatusOK)
		if req.Method == http.MethodHead {
			return nil
		}

		written, err := a.copyChunks(ctx, w, f)
		if err != nil {
			a.logger.Debug("stream ended early", "song", song.ID, "written", written, "error", err)
		}
		return nil
	}
}

// copyChunks copies f to w in fixed chunks until EOF, a write fails or ctx is done.
func (a *API) copyChunks(ctx context.Context, w http.ResponseWriter, f *os.File) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := f.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			return written, rerr
		}
	}
}

// getCoverArt sends an album's cover, scaled to a size by size PNG when size is given.
//
// The id may name an album or one of its songs. Albums without a cover file fall back to the
// picture embedded in their first song.
func (a *API) getCoverArt(w http.ResponseWriter, req *request) error {
	ctx := req.Context()
	id, err := req.required("id")
	if err != nil {
		return err
	}
	size, err := req.integer("size", 0)
	if err != nil {
		return err
	}
	if a.art == nil {
		return subsonic.NotFoundf("cover art %q not found", id)
	}

	album, song, err := a.coverOwner(ctx, id)
	if err != nil {
		return err
	}

	if album != nil && album.ArtPath != "" {
		if size > 0 {
			img, err := a.art.Open(album.ArtPath)
			if err != nil {
				return a.missingArt(id, err)
			}
			return a.sendPNG(w, req, img, size)
		}
		f, err := os.Open(album.ArtPath)
		if err != nil {
			return a.missingArt(id, err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat cover: %w", err)
		}
		w.Header().Set("Content-Type", artwork.ContentType(album.ArtPath))
		http.ServeContent(w, req.Request, filepath.Base(album.ArtPath), info.ModTime(), f)
		return nil
	}

	if song == nil && album != nil {
		songs, err := a.catalog.Songs(ctx, models.SongFilter{AlbumID: album.ID})
		if err != nil {
			return err
		}
		if len(songs) > 0 {
			song = &songs[0]
		}
	}
	if song == nil {
		return subsonic.NotFoundf("cover art %q not found", id)
	}

	data, mime, err := a.art.Embedded(song.Path)
	if err != nil {
		return a.missingArt(id, err)
	}
	if size > 0 {
		img, err := a.art.Decode(data)
		if err != nil {
			return a.missingArt(id, err)
		}
		return a.sendPNG(w, req, img, size)
	}
	return send(w, req, mime, data)
}

// coverOwner resolves a cover art id to its album, and to the song when a song id was given.
func (a *API) coverOwner(ctx context.Context, id string) (*models.Album, *models.Song, error) {
	switch ns, _ := ids.NamespaceOf(id); ns {
	case ids.Album:
		albumID, err := ids.DecodeAlbum(id)
		if err != nil {
			return nil, nil, err
		}
		album, err := a.catalog.Album(ctx, albumID)
		if err != nil {
			return nil, nil, err
		}
		return album, nil, nil

	case ids.Song:
		songID, err := ids.DecodeSong(id)
		if err != nil {
			return nil, nil, err
		}
		song, err := a.catalog.Song(ctx, songID)
		if err != nil {
			return nil, nil, err
		}
		if song.AlbumID == 0 {
			return nil, song, nil
		}
		album, err := a.catalog.Album(ctx, song.AlbumID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, song, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return album, song, nil

	default:
		return nil, nil, subsonic.NotFoundf("cover art %q not found", id)
	}
}

// missingArt turns an unreadable or absent image into a not found error and logs the cause.
func (a *API) missingArt(id string, err error) error {
	if !errors.Is(err, shared.ErrNoArtwork) {
		a.logger.Warn("cover art unavailable", "id", id, "error", err)
	}
	return subsonic.NotFoundf("cover art %q not found", id)
}

func (a *API) sendPNG(w http.ResponseWriter, req *request, img image.Image, size int) error {
	var buf bytes.Buffer
	if err := a.art.EncodePNG(&buf, a.art.Resize(img, size)); err != nil {
		return err
	}
	return send(w, req, "image/png", buf.Bytes())
}

func send(w http.ResponseWriter, req *request, contentType string, data []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if req.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
	return nil
}
