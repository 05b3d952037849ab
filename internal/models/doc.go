// Package models defines the catalog records served over the protocol and the contract a catalog store fulfils.
//
// Records are normalized at the store boundary: handlers only ever see these types, never database rows.
//   - [Album] : an album with its aggregate song count and duration
//   - [Song] : one audio file with its tag metadata
//   - [Artist] : an album artist name with the number of albums credited to it
//   - [Genre] : a genre name with song and album counts
//
// The [Catalog] interface is implemented by the SQLite repository and by the in-memory fake used in tests.
// A missing entity is reported as [shared.ErrNotFound] (possibly wrapped).
package models
