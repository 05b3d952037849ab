// Package ids encodes catalog identifiers into the opaque, namespace-prefixed IDs handed to clients.
//
// Every ID is a one character namespace tag followed by a payload:
//
//	1<base64url(name)>   artist
//	2<decimal id>        album
//	3<decimal id>        song
//	4<base64url(path)>   playlist, relative to the playlist root
//
// Decoding an ID from the wrong namespace fails with [ErrMalformedID] rather than resolving to a different entity.
package ids

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ErrMalformedID reports an ID that cannot be decoded for the requested namespace.
var ErrMalformedID = errors.New("malformed id")

// Namespace identifies which kind of entity an ID refers to.
type Namespace byte

const (
	Artist   Namespace = '1'
	Album    Namespace = '2'
	Song     Namespace = '3'
	Playlist Namespace = '4'
)

func (n Namespace) String() string {
	switch n {
	case Artist:
		return "artist"
	case Album:
		return "album"
	case Song:
		return "song"
	case Playlist:
		return "playlist"
	default:
		return fmt.Sprintf("namespace(%q)", byte(n))
	}
}

var encoding = base64.RawURLEncoding

// NamespaceOf returns the namespace of id without validating its payload.
func NamespaceOf(id string) (Namespace, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedID)
	}
	switch ns := Namespace(id[0]); ns {
	case Artist, Album, Song, Playlist:
		return ns, nil
	default:
		return 0, fmt.Errorf("%w: unknown namespace %q", ErrMalformedID, id[0])
	}
}

func payload(id string, want Namespace) (string, error) {
	ns, err := NamespaceOf(id)
	if err != nil {
		return "", err
	}
	if ns != want {
		return "", fmt.Errorf("%w: %s id used where %s expected", ErrMalformedID, ns, want)
	}
	return id[1:], nil
}

// EncodeArtist encodes an artist display name.
func EncodeArtist(name string) string {
	return string(Artist) + encoding.EncodeToString([]byte(name))
}

// DecodeArtist returns the artist display name encoded in id.
func DecodeArtist(id string) (string, error) {
	p, err := payload(id, Artist)
	if err != nil {
		return "", err
	}
	b, err := encoding.DecodeString(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedID, err)
	}
	return string(b), nil
}

// EncodeAlbum encodes a native album id.
func EncodeAlbum(id int64) string {
	return string(Album) + strconv.FormatInt(id, 10)
}

// DecodeAlbum returns the native album id encoded in id.
func DecodeAlbum(id string) (int64, error) {
	return decodeInt(id, Album)
}

// EncodeSong encodes a native song id.
func EncodeSong(id int64) string {
	return string(Song) + strconv.FormatInt(id, 10)
}

// DecodeSong returns the native song id encoded in id.
func DecodeSong(id string) (int64, error) {
	return decodeInt(id, Song)
}

func decodeInt(id string, ns Namespace) (int64, error) {
	p, err := payload(id, ns)
	if err != nil {
		return 0, err
	}
	if p == "" || p[0] == '+' || p[0] == '-' {
		return 0, fmt.Errorf("%w: %q is not a %s id", ErrMalformedID, id, ns)
	}
	n, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a %s id", ErrMalformedID, id, ns)
	}
	return n, nil
}

// EncodePlaylist encodes a slash separated path relative to the playlist root.
func EncodePlaylist(rel string) string {
	return string(Playlist) + encoding.EncodeToString([]byte(rel))
}

// DecodePlaylist returns the relative playlist path encoded in id.
//
// Paths that are absolute or would climb out of the playlist root are rejected.
func DecodePlaylist(id string) (string, error) {
	p, err := payload(id, Playlist)
	if err != nil {
		return "", err
	}
	b, err := encoding.DecodeString(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedID, err)
	}

	rel := string(b)
	clean := path.Clean(rel)
	if rel == "" || strings.HasPrefix(rel, "/") || strings.ContainsRune(rel, '\\') ||
		clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: playlist path %q escapes the root", ErrMalformedID, rel)
	}
	return rel, nil
}
