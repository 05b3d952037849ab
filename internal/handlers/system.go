package handlers

import (
	"context"
	"time"

	"github.com/desertthunder/tonearm/internal/auth"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

// folderID is the only music folder.
const folderID = 0

var licenseExpiry = time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)

func (a *API) ping(ctx context.Context, req *request) (*subsonic.Node, error) {
	return nil, nil
}

func (a *API) getLicense(ctx context.Context, req *request) (*subsonic.Node, error) {
	email := ""
	if u, ok := a.users.User(req.user); ok {
		email = u.Email
	}
	return subsonic.NewNode("license").
		Attr("valid", true).
		Attr("email", email).
		Attr("trialExpires", licenseExpiry), nil
}

func (a *API) getMusicFolders(ctx context.Context, req *request) (*subsonic.Node, error) {
	folder := subsonic.NewNode("musicFolder").Attr("id", folderID).Attr("name", "Music")
	return subsonic.NewNode("musicFolders").Group("musicFolder", folder), nil
}

func (a *API) getOpenSubsonicExtensions(ctx context.Context, req *request) (*subsonic.Node, error) {
	lyrics := subsonic.NewNode("extension").Attr("name", "songLyrics").Values("versions", 1)
	return subsonic.NewNode("").Group("openSubsonicExtensions", lyrics), nil
}

// getUser reports every configured user as an administrator allowed to stream, download and fetch art.
func (a *API) getUser(ctx context.Context, req *request) (*subsonic.Node, error) {
	name := req.str("username")
	if name == "" {
		name = req.user
	}

	user, ok := a.users.User(name)
	if !ok {
		if !a.users.Open() {
			return nil, subsonic.NotFoundf("user %q not found", name)
		}
		user = auth.User{Name: name}
	}

	n := subsonic.NewNode("user").
		Attr("username", user.Name).
		Attr("email", user.Email).
		Attr("scrobblingEnabled", user.Scrobble)
	for _, role := range []string{"adminRole", "settingsRole", "downloadRole", "coverArtRole", "streamRole"} {
		n.Attr(role, true)
	}
	for _, role := range []string{
		"uploadRole", "playlistRole", "commentRole", "podcastRole",
		"jukeboxRole", "shareRole", "videoConversionRole",
	} {
		n.Attr(role, false)
	}
	return n.Attr("avatarLastChanged", time.Unix(0, 0)).Values("folder", folderID), nil
}
