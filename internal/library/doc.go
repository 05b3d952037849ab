// Package library fills the catalog from audio files on disk.
//
// A scan walks the music directory, reads each file's tags in a bounded worker pool and then writes every
// album and song serially inside one transaction, removing songs whose files have disappeared.
// Files without readable tags fall back to an Artist/Album/NN - Title.ext layout.
package library
