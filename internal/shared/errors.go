package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrAuthFailed         = fmt.Errorf("authentication failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrGameNotFound       = fmt.Errorf("game not found")
	ErrNoPrice            = fmt.Errorf("no price available")

	// Storage errors
	ErrNotFound          = fmt.Errorf("record not found")
	ErrUnknownCollection = fmt.Errorf("unknown collection")
	ErrOutOfScope        = fmt.Errorf("collection not in transaction scope")

	// Import errors
	ErrCommitFailed  = fmt.Errorf("import failed")
	ErrUnknownField  = fmt.Errorf("unknown mapping field")
	ErrUnknownColumn = fmt.Errorf("unknown column")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
