package handlers

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tonearm/internal/auth"
	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/playlists"
	"github.com/desertthunder/tonearm/internal/playqueue"
	"github.com/desertthunder/tonearm/internal/server"
	"github.com/desertthunder/tonearm/internal/subsonic"
)

const prefix = "/rest/"

// Artwork decodes, resizes and encodes cover images.
type Artwork interface {
	Open(path string) (image.Image, error)
	Decode(data []byte) (image.Image, error)
	Resize(img image.Image, size int) image.Image
	EncodePNG(w io.Writer, img image.Image) error
	Embedded(path string) ([]byte, string, error)
}

// Scrobbler forwards plays to the configured notifiers.
type Scrobbler interface {
	Dispatch(ctx context.Context, song models.Song, at time.Time, submission bool) error
}

// Options holds the collaborators an [API] needs.
type Options struct {
	Catalog   models.Catalog
	Users     *auth.Store
	Playlists *playlists.Cache
	Queue     *playqueue.Store
	Artwork   Artwork
	Scrobbler Scrobbler
	Logger    *log.Logger

	MusicDir    string
	PlaylistDir string
}

// request is a parsed protocol call.
type request struct {
	*http.Request
	params url.Values
	user   string
}

// action answers with a response body. A nil node yields an empty successful envelope.
type action func(ctx context.Context, req *request) (*subsonic.Node, error)

// rawAction writes the response itself. It returns an error only if nothing has been written yet.
type rawAction func(w http.ResponseWriter, req *request) error

type operation struct {
	handle action
	raw    rawAction
	inline bool
}

// API serves the protocol operations under /rest/.
type API struct {
	catalog     models.Catalog
	gate        *auth.Gate
	users       *auth.Store
	playlists   *playlists.Cache
	queue       *playqueue.Store
	art         Artwork
	scrobbler   Scrobbler
	logger      *log.Logger
	musicDir    string
	playlistDir string

	ops map[string]operation
	now func() time.Time
}

// NewAPI creates an [API] from opts. Missing users, queue and playlist cache default to empty instances.
func NewAPI(opts Options) *API {
	users := opts.Users
	if users == nil {
		users = auth.NewStore(nil)
	}
	queue := opts.Queue
	if queue == nil {
		queue = playqueue.NewStore()
	}
	cache := opts.Playlists
	if cache == nil {
		cache = playlists.NewCache(opts.Catalog, opts.MusicDir)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	a := &API{
		catalog:     opts.Catalog,
		gate:        auth.NewGate(users),
		users:       users,
		playlists:   cache,
		queue:       queue,
		art:         opts.Artwork,
		scrobbler:   opts.Scrobbler,
		logger:      logger,
		musicDir:    opts.MusicDir,
		playlistDir: opts.PlaylistDir,
		now:         time.Now,
	}
	a.ops = a.operations()
	return a
}

func (a *API) operations() map[string]operation {
	return map[string]operation{
		// system
		"ping":                      {handle: a.ping},
		"getLicense":                {handle: a.getLicense},
		"getMusicFolders":           {handle: a.getMusicFolders},
		"getOpenSubsonicExtensions": {handle: a.getOpenSubsonicExtensions, inline: true},
		"getUser":                   {handle: a.getUser},

		// browsing
		"getGenres":         {handle: a.getGenres},
		"getArtists":        {handle: a.getArtists},
		"getIndexes":        {handle: a.getIndexes},
		"getArtist":         {handle: a.getArtist},
		"getArtistInfo":     {handle: a.artistInfo("artistInfo")},
		"getArtistInfo2":    {handle: a.artistInfo("artistInfo2")},
		"getAlbum":          {handle: a.getAlbum},
		"getSong":           {handle: a.getSong},
		"getMusicDirectory": {handle: a.getMusicDirectory},

		// lists
		"getAlbumList":    {handle: a.albumList(false)},
		"getAlbumList2":   {handle: a.albumList(true)},
		"getRandomSongs":  {handle: a.getRandomSongs},
		"getSongsByGenre": {handle: a.getSongsByGenre},
		"getStarred":      {handle: a.starred("starred")},
		"getStarred2":     {handle: a.starred("starred2")},
		"getTopSongs":     {handle: a.getTopSongs},

		// search
		"search2": {handle: a.search(false)},
		"search3": {handle: a.search(true)},

		// playlists and queue
		"getPlaylists":  {handle: a.getPlaylists},
		"getPlaylist":   {handle: a.getPlaylist},
		"getPlayQueue":  {handle: a.getPlayQueue},
		"savePlayQueue": {handle: a.savePlayQueue},

		// media
		"stream":      {raw: a.stream(false)},
		"download":    {raw: a.stream(true)},
		"getCoverArt": {raw: a.getCoverArt},

		// annotation and lyrics
		"scrobble":          {handle: a.scrobble},
		"getLyrics":         {handle: a.getLyrics},
		"getLyricsBySongId": {handle: a.getLyricsBySongID},
	}
}

// Routes returns /rest/<op> and /rest/<op>.view for every operation, plus the /rest/ subtree so unknown
// operations still get an error envelope.
func (a *API) Routes() []string {
	routes := make([]string, 0, len(a.ops)*2+1)
	routes = append(routes, prefix)
	for name := range a.ops {
		routes = append(routes, prefix+name, prefix+name+".view")
	}
	return routes
}

// ServeHTTP authenticates the call, runs the operation and renders the result in the requested format.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), ".view")
	op, ok := a.ops[name]
	if ok {
		server.SetRoute(r.Context(), name)
	} else {
		server.SetRoute(r.Context(), "unknown")
	}

	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, POST, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	out := responder{w: w, logger: a.logger}
	if err := r.ParseForm(); err != nil {
		out.fail(r, err, http.StatusOK)
		return
	}
	out.format = subsonic.ParseFormat(r.Form.Get("f"))
	out.callback = r.Form.Get("callback")

	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			out.fail(r, fmt.Errorf("panic: %v", v), http.StatusInternalServerError)
		}
	}()

	if !ok {
		out.fail(r, subsonic.NotFoundf("unknown operation %q", name), http.StatusNotFound)
		return
	}

	user, err := a.gate.Authenticate(r.Form)
	if err != nil {
		out.fail(r, err, http.StatusOK)
		return
	}

	ctx := auth.WithUser(r.Context(), user)
	req := &request{Request: r.WithContext(ctx), params: r.Form, user: user}

	if op.raw != nil {
		if err := op.raw(w, req); err != nil {
			status := http.StatusOK
			if subsonic.AsError(err).Code == subsonic.NotFound {
				status = http.StatusNotFound
			}
			out.fail(req.Request, err, status)
		}
		return
	}

	body, err := op.handle(ctx, req)
	switch {
	case err != nil:
		out.fail(req.Request, err, http.StatusOK)
	case body == nil:
		out.write(r, subsonic.Empty(), http.StatusOK)
	case op.inline:
		out.write(r, subsonic.OKInline(body), http.StatusOK)
	default:
		out.write(r, subsonic.OK(body), http.StatusOK)
	}
}

// responder renders envelopes in one request's format.
type responder struct {
	w        http.ResponseWriter
	logger   *log.Logger
	format   subsonic.Format
	callback string
}

func (o responder) fail(r *http.Request, err error, status int) {
	perr := subsonic.AsError(err)
	if perr.Code == subsonic.GenericError {
		o.logger.Error("request failed", "op", r.URL.Path, "request_id", server.RequestIDFrom(r.Context()), "error", err)
	} else {
		o.logger.Debug("request rejected", "op", r.URL.Path, "code", int(perr.Code), "message", perr.Message)
	}
	o.write(r, subsonic.Failure(perr), status)
}

func (o responder) write(r *http.Request, resp subsonic.Response, status int) {
	o.w.Header().Set("Content-Type", o.format.ContentType())
	o.w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if err := subsonic.Render(o.w, resp, o.format, o.callback); err != nil {
		o.logger.Warn("failed to write response", "op", r.URL.Path, "error", err)
	}
}

// str returns the first value of name.
func (r *request) str(name string) string {
	return r.params.Get(name)
}

// list returns every value of name.
func (r *request) list(name string) []string {
	return r.params[name]
}

// required returns the value of name or a missing parameter error.
func (r *request) required(name string) (string, error) {
	v := r.params.Get(name)
	if v == "" {
		return "", subsonic.Missing(name)
	}
	return v, nil
}

// integer parses name as a non-negative int, returning def when absent.
func (r *request) integer(name string, def int) (int, error) {
	v := r.params.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, subsonic.InvalidValue(name)
	}
	return n, nil
}

// bounded is [request.integer] clamped to limit.
func (r *request) bounded(name string, def, limit int) (int, error) {
	n, err := r.integer(name, def)
	if err != nil {
		return 0, err
	}
	return min(n, limit), nil
}

// int64s parses every value of name as a non-negative int64.
func (r *request) int64s(name string) ([]int64, error) {
	vals := r.params[name]
	out := make([]int64, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return nil, subsonic.InvalidValue(name)
		}
		out = append(out, n)
	}
	return out, nil
}

// boolean parses name, returning def when absent or unparsable.
func (r *request) boolean(name string, def bool) bool {
	v, err := strconv.ParseBool(r.params.Get(name))
	if err != nil {
		return def
	}
	return v
}
