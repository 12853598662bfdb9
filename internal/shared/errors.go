package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrTransient        = fmt.Errorf("transient API failure")
	ErrRateLimited      = fmt.Errorf("rate limited")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrPaginationLimit  = fmt.Errorf("pagination limit reached")

	// Input validation errors
	ErrParse             = fmt.Errorf("invalid playlist identifier")
	ErrUnsupportedFormat = fmt.Errorf("unsupported export format")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")

	// Front end errors
	ErrBusy = fmt.Errorf("export already in progress")
)
