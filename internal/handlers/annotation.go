package handlers

import (
	"context"
	"time"

	"github.com/desertthunder/tonearm/internal/ids"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// scrobble forwards plays to the notifiers. Each id may carry a matching time in milliseconds since the epoch.
//
// Users configured without scrobbling are acknowledged but nothing is forwarded. Notifier failures are
// logged and never reach the client.
func (a *API) scrobble(ctx context.Context, req *request) (*subsonic.Node, error) {
	songIDs := req.list("id")
	if len(songIDs) == 0 {
		return nil, subsonic.Missing("id")
	}
	times, err := req.int64s("time")
	if err != nil {
		return nil, err
	}
	submission := req.boolean("submission", true)

	songs := make([]models.Song, 0, len(songIDs))
	for _, id := range songIDs {
		songID, err := ids.DecodeSong(id)
		if err != nil {
			return nil, err
		}
		song, err := a.catalog.Song(ctx, songID)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}

	if !a.scrobbles(req.user) {
		return nil, nil
	}
	for i, song := range songs {
		at := a.now()
		if i < len(times) {
			at = time.UnixMilli(times[i])
		}
		// failures are logged per notifier by the scrobbler and never reach the client
		_ = a.scrobbler.Dispatch(ctx, song, at, submission)
	}
	return nil, nil
}

// scrobbles reports whether plays by user are forwarded. Anyone may scrobble when no users are configured.
func (a *API) scrobbles(user string) bool {
	if a.scrobbler == nil {
		return false
	}
	if a.users.Open() {
		return true
	}
	u, ok := a.users.User(user)
	return ok && u.Scrobble
}
