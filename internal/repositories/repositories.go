package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// toUnix converts a time to fractional Unix seconds for storage.
func toUnix(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

// fromUnix converts stored fractional Unix seconds back to a time.
func fromUnix(f float64) time.Time {
	if f <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

// notFound turns [sql.ErrNoRows] into the given not-found sentinel and wraps anything else.
func notFound(err error, sentinel error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("failed to scan %s: %w", what, err)
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}
