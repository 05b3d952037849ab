// Package scrobble forwards playback events to the configured notification backends.
//
// Backends are registered by name in a [Registry]. Dispatch calls every backend in turn; one failing backend
// does not stop the others and every failure is reported in the combined error.
package scrobble

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"

	"github.com/desertthunder/tonearm/internal/models"
	"github.com/desertthunder/tonearm/internal/shared"
)

// Notifier receives playback events.
//
// submission is true for a completed play and false for a "now playing" update.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, song models.Song, at time.Time, submission bool) error
}

// Registry holds the active notifiers.
type Registry struct {
	notifiers []Notifier
	logger    *log.Logger
}

// NewRegistry creates a Registry with the given notifiers.
func NewRegistry(logger *log.Logger, notifiers ...Notifier) *Registry {
	return &Registry{notifiers: notifiers, logger: logger}
}

// FromConfig builds a Registry from the [[scrobblers]] configuration entries.
func FromConfig(cfgs []shared.ScrobblerConfig, logger *log.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, cfg := range cfgs {
		switch cfg.Kind {
		case "log":
			r.Register(NewLogNotifier(cfg.Name, logger))
		case "webhook":
			r.Register(NewWebhook(cfg.Name, cfg.URL, cfg.Token, cfg.RateLimit, nil))
		default:
			return nil, fmt.Errorf("%w: scrobbler %q has unknown kind %q", shared.ErrInvalidConfig, cfg.Name, cfg.Kind)
		}
	}
	return r, nil
}

// Register adds a notifier.
func (r *Registry) Register(n Notifier) {
	r.notifiers = append(r.notifiers, n)
}

// Names lists the registered notifiers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.notifiers))
	for i, n := range r.notifiers {
		names[i] = n.Name()
	}
	return names
}

// Dispatch sends the event to every notifier and returns all failures combined.
func (r *Registry) Dispatch(ctx context.Context, song models.Song, at time.Time, submission bool) error {
	var errs error
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, song, at, submission); err != nil {
			if r.logger != nil {
				r.logger.Warn("scrobble failed", "notifier", n.Name(), "song", song.ID, "error", err)
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errs
}

// LogNotifier writes playback events to the log.
type LogNotifier struct {
	name   string
	logger *log.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(name string, logger *log.Logger) *LogNotifier {
	return &LogNotifier{name: name, logger: logger}
}

func (n *LogNotifier) Name() string { return n.name }

func (n *LogNotifier) Notify(ctx context.Context, song models.Song, at time.Time, submission bool) error {
	event := "now playing"
	if submission {
		event = "scrobble"
	}
	n.logger.Info(event, "artist", song.Artist, "title", song.Title, "album", song.Album, "at", at.Format(time.RFC3339))
	return nil
}
