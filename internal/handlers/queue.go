package handlers

import (
	"context"
	"errors"

	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/shared"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

const unknownClient = "unknown"

// getPlayQueue returns the caller's saved queue. Songs removed from the catalog since the save are skipped.
func (a *API) getPlayQueue(ctx context.Context, req *request) (*subsonic.Node, error) {
	q, ok := a.queue.Get(req.user)
	if !ok {
		return nil, nil
	}

	entries := make([]*subsonic.Node, 0, len(q.IDs))
	for _, id := range q.IDs {
		songID, err := ids.DecodeSong(id)
		if err != nil {
			continue
		}
		song, err := a.catalog.Song(ctx, songID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, a.songNode("entry", *song))
	}

	return subsonic.NewNode("playQueue").
		AttrIf(q.Current != "", "current", q.Current).
		Attr("position", q.Position).
		Attr("username", req.user).
		Attr("changed", q.Changed).
		Attr("changedBy", q.ChangedBy).
		Group("entry", entries...), nil
}

// savePlayQueue stores the queue for the caller. Saving without any id clears it.
func (a *API) savePlayQueue(ctx context.Context, req *request) (*subsonic.Node, error) {
	songs := req.list("id")
	if len(songs) == 0 {
		a.queue.Clear(req.user)
		return nil, nil
	}
	for _, id := range songs {
		if _, err := ids.DecodeSong(id); err != nil {
			return nil, err
		}
	}

	current := req.str("current")
	if current != "" {
		if _, err := ids.DecodeSong(current); err != nil {
			return nil, err
		}
	}

	positions, err := req.int64s("position")
	if err != nil {
		return nil, err
	}
	var position int64
	if len(positions) > 0 {
		position = positions[0]
	}

	client := req.str("c")
	if client == "" {
		client = unknownClient
	}
	a.queue.Save(req.user, songs, current, position, client)
	return nil, nil
}
