package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog errors
	ErrNotFound       = fmt.Errorf("not found")
	ErrAlbumNotFound  = fmt.Errorf("album %w", ErrNotFound)
	ErrSongNotFound   = fmt.Errorf("song %w", ErrNotFound)
	ErrArtistNotFound = fmt.Errorf("artist %w", ErrNotFound)

	// Library errors
	ErrNoMusicDir = fmt.Errorf("music directory not configured")
	ErrNoArtwork  = fmt.Errorf("no artwork available")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
