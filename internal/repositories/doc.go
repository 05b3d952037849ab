// Package repositories implements SQLite persistence for the music catalog.
//
// Key Implementations:
//   - [CatalogRepository] : read side, satisfies [models.Catalog] with aggregate album and genre queries
//   - [Import] : write side, a single transaction the library scanner upserts albums and songs into
//
// Albums and songs keep SQLite's native integer primary keys; those integers are what the protocol ID codec encodes.
// Timestamps are stored as fractional Unix seconds.
package repositories
