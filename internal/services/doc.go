// Package services implements the remote side of the exporter: the Spotify Web API client,
// the playlist identifier parser and the normalizer from API records to [models.Track].
//
// # Session
//
// The pipeline only depends on the [Session] interface. [SpotifyService] implements it after a
// successful [SpotifyService.Authenticate]; the value is then passed explicitly to every call,
// so tests can swap in a mock without touching global state.
//
// # Authentication
//
// [SpotifyService] uses the OAuth2 client-credentials grant (app-only access, public playlists).
// The token is fetched eagerly by Authenticate so bad credentials fail before any export starts,
// and the [oauth2] transport refreshes it afterwards.
//
// # Error Handling
//
// HTTP failures are mapped onto sentinel errors from the shared package:
//   - [shared.ErrAuthFailed] : token exchange failed, 401 or 403
//   - [shared.ErrPlaylistNotFound] : 404 or 400 (unknown or private playlist)
//   - [shared.ErrTransient] : network errors, 5xx and 429 (also [shared.ErrRateLimited])
//   - [shared.ErrAPIRequest] : any other non-2xx status or an undecodable body
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//
// Spotify error bodies ({"error":{"status","message"}}) are decoded into [APIError] and included in the message.
// Requests are never retried.
//
// # API Mappings
//
// [NormalizeItem] maps a [SpotifyPlaylistItem] to a [models.Track], keeping the artist list in API order
// and skipping items whose track is null.
package services
