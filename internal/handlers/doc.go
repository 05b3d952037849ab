// Package handlers implements the Subsonic REST operations over a [models.Catalog].
//
// # Dispatch
//
// [API] serves every operation at /rest/<name> and /rest/<name>.view. Each request is parsed from the query
// string and form body, authenticated by the [auth.Gate], and answered in the format named by the f parameter
// (xml, json or jsonp). Failures are reported inside the protocol envelope, so most errors still return 200.
//
// # Operations
//
//   - system: ping, getLicense, getMusicFolders, getOpenSubsonicExtensions, getUser
//   - browsing: getGenres, getArtists, getIndexes, getArtist, getArtistInfo(2), getAlbum, getSong, getMusicDirectory
//   - lists: getAlbumList(2), getRandomSongs, getSongsByGenre, getStarred(2), getTopSongs
//   - search: search2, search3, getLyrics, getLyricsBySongId
//   - playlists: getPlaylists, getPlaylist
//   - play queue: getPlayQueue, savePlayQueue
//   - annotation: scrobble
//   - media: stream, download, getCoverArt
//
// Media operations write raw bytes and only fall back to an envelope on error.
package handlers
