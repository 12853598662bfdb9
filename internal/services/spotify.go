// Spotify Web API implementation of [Session]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyPlaylistItem represents a track within a playlist context.
//
// Track is nil when the song was removed or is unavailable in the market.
type SpotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents the playlist metadata fields requested from the API.
type SpotifyPlaylist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Tracks playlistTracks `json:"tracks"`
}

// SpotifyPlaylistItems represents one page of the playlist tracks endpoint.
type SpotifyPlaylistItems struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// APIError represents a Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

// SpotifyOpts tunes the HTTP behavior of [SpotifyService]. Zero values select defaults.
type SpotifyOpts struct {
	BaseURL    string        // Defaults to the public Web API
	TokenURL   string        // Defaults to the Spotify accounts token endpoint
	HTTPClient *http.Client  // Base transport for token and API requests
	RateLimit  float64       // Requests per second, unlimited when <= 0
	Timeout    time.Duration // Per-request timeout, none when 0
	Logger     *log.Logger
}

// SpotifyService talks to the Spotify Web API with an app-only client-credentials token.
//
// Once [SpotifyService.Authenticate] succeeds the value is a [Session].
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	baseClient *http.Client
	httpClient *http.Client
	token      *oauth2.Token
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     *log.Logger
}

// NewSpotifyService creates a new Spotify service with the given client credentials.
func NewSpotifyService(credentials map[string]string, opts SpotifyOpts) (*SpotifyService, error) {
	clientID := strings.TrimSpace(credentials["client_id"])
	if clientID == "" {
		return nil, fmt.Errorf("%w: %w: client_id", shared.ErrAuthFailed, shared.ErrMissingCredentials)
	}

	clientSecret := strings.TrimSpace(credentials["client_secret"])
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: %w: client_secret", shared.ErrAuthFailed, shared.ErrMissingCredentials)
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	baseClient := opts.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		baseURL:    baseURL,
		baseClient: baseClient,
		limiter:    limiter,
		timeout:    opts.Timeout,
		logger:     logger,
	}, nil
}

// Connect builds a [SpotifyService] from config and authenticates it.
func Connect(ctx context.Context, config *shared.Config, logger *log.Logger) (*SpotifyService, error) {
	srv, err := NewSpotifyService(config.Credentials.Spotify.Map(), SpotifyOpts{
		RateLimit: config.API.RateLimit,
		Timeout:   config.API.Timeout(),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	if err := srv.Authenticate(ctx); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate performs the client-credentials exchange. Any failure is reported as [shared.ErrAuthFailed].
//
// The first exchange honors ctx. The token is refreshed transparently by the [oauth2]
// transport for later requests, outliving ctx.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		exchangeCtx, cancel = context.WithTimeout(exchangeCtx, s.timeout)
		defer cancel()
	}

	token, err := s.config.Token(exchangeCtx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	refreshCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, s.baseClient)
	ts := oauth2.ReuseTokenSource(token, s.config.TokenSource(refreshCtx))
	client := oauth2.NewClient(refreshCtx, ts)
	client.Timeout = s.timeout

	s.token = token
	s.httpClient = client
	s.logger.Debug("authenticated", "service", s.Name(), "expires", token.Expiry)
	return nil
}

// Authenticated reports whether [SpotifyService.Authenticate] has succeeded.
func (s *SpotifyService) Authenticated() bool {
	return s.httpClient != nil
}

// doRequest performs an authenticated GET request against the API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrTransient, err)
	}

	apiURL := s.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("request", "method", req.Method, "url", apiURL)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: token refresh: %v", shared.ErrAuthFailed, retrieveErr)
		}
		return fmt.Errorf("%w: request failed: %w", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", shared.ErrTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Debug("response", "status", resp.StatusCode, "body", string(body))
		return statusError(resp, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}
	return nil
}

// statusError maps a non-2xx response onto the shared error taxonomy.
func statusError(resp *http.Response, body []byte) error {
	detail := fmt.Sprintf("status %d", resp.StatusCode)
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorInfo.Message != "" {
		detail = apiErr.Error()
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, detail)
	case code == http.StatusNotFound, code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, detail)
	case code == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter == "" {
			retryAfter = "unknown"
		}
		return fmt.Errorf("%w: %w: %s (retry after %ss)", shared.ErrTransient, shared.ErrRateLimited, detail, retryAfter)
	case code >= 500:
		return fmt.Errorf("%w: %s", shared.ErrTransient, detail)
	default:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, detail)
	}
}

// Playlist retrieves the raw playlist metadata by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s?fields=%s", url.PathEscape(playlistID), url.QueryEscape("id,name,tracks.total"))

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, endpoint, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistMeta retrieves playlist metadata and converts it to a [models.Playlist].
func (s *SpotifyService) PlaylistMeta(ctx context.Context, playlistID string) (*models.Playlist, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	id := sp.ID
	if id == "" {
		id = playlistID
	}
	return &models.Playlist{ID: id, Name: sp.Name, TrackCount: sp.Tracks.Total}, nil
}

// TracksPage retrieves up to limit playlist items starting at offset. An empty slice marks the end of the playlist.
func (s *SpotifyService) TracksPage(ctx context.Context, playlistID string, offset, limit int) ([]SpotifyPlaylistItem, error) {
	if limit <= 0 || limit > shared.MaxPageSize {
		limit = shared.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?offset=%d&limit=%d", url.PathEscape(playlistID), offset, limit)

	var page SpotifyPlaylistItems
	if err := s.doRequest(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}
