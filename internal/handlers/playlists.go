package handlers

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/playlists"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

const playlistOwner = "admin"

func playlistNode(name, rel string, e *playlists.Entry) *subsonic.Node {
	return subsonic.NewNode(name).
		Attr("id", ids.EncodePlaylist(rel)).
		Attr("name", e.Name).
		Attr("comment", "").
		Attr("owner", playlistOwner).
		Attr("public", true).
		Attr("songCount", e.SongCount()).
		Attr("duration", e.Duration()).
		Attr("created", e.Created).
		Attr("changed", e.ModTime).
		Attr("coverArt", "playlist")
}

// getPlaylists lists every playlist file under the playlist directory.
func (a *API) getPlaylists(ctx context.Context, req *request) (*subsonic.Node, error) {
	out := subsonic.NewNode("playlists")
	if a.playlistDir == "" {
		return out.Group("playlist"), nil
	}

	listed, err := a.playlists.List(ctx, a.playlistDir)
	if errors.Is(err, fs.ErrNotExist) {
		return out.Group("playlist"), nil
	}
	if err != nil {
		return nil, err
	}

	nodes := make([]*subsonic.Node, len(listed))
	for i, l := range listed {
		nodes[i] = playlistNode("playlist", l.Rel, l.Entry)
	}
	return out.Group("playlist", nodes...), nil
}

func (a *API) getPlaylist(ctx context.Context, req *request) (*subsonic.Node, error) {
	id, err := req.required("id")
	if err != nil {
		return nil, err
	}
	rel, err := ids.DecodePlaylist(id)
	if err != nil {
		return nil, err
	}
	if a.playlistDir == "" {
		return nil, subsonic.NotFoundf("playlist %q not found", rel)
	}

	entry, err := a.playlists.Get(ctx, filepath.Join(a.playlistDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	return playlistNode("playlist", rel, entry).
		Group("entry", a.songNodes("entry", entry.Songs)...), nil
}
