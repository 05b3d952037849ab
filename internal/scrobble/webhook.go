package scrobble

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tonearm/internal/auth"
	"github.com/desertthunder/tonearm/internal/models"
)

// Payload is the JSON document posted by [Webhook].
type Payload struct {
	Event    string    `json:"event"`
	User     string    `json:"user,omitempty"`
	Time     time.Time `json:"time"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Track    int       `json:"track,omitempty"`
	Duration int       `json:"duration,omitempty"`
}

// Webhook posts playback events as JSON to a URL.
//
// When a token is configured requests carry it as a bearer token. Requests are spaced by the rate limiter;
// waiting respects the request context.
type Webhook struct {
	name    string
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhook creates a Webhook. ratePerSecond <= 0 disables limiting. A nil base uses a client with a 10s timeout.
func NewWebhook(name, url, token string, ratePerSecond float64, base *http.Client) *Webhook {
	if base == nil {
		base = &http.Client{Timeout: 10 * time.Second}
	}

	client := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
		client.Timeout = base.Timeout
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	return &Webhook{name: name, url: url, client: client, limiter: rate.NewLimiter(limit, 1)}
}

func (w *Webhook) Name() string { return w.name }

func (w *Webhook) Notify(ctx context.Context, song models.Song, at time.Time, submission bool) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	event := "now_playing"
	if submission {
		event = "scrobble"
	}
	body, err := json.Marshal(Payload{
		Event:    event,
		User:     auth.UserFrom(ctx),
		Time:     at.UTC(),
		Title:    song.Title,
		Artist:   song.Artist,
		Album:    song.Album,
		Track:    song.Track,
		Duration: song.Seconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
