package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Validation errors
	ErrEmptyQuery       = goerr.New("query is empty")
	ErrInvalidNamespace = goerr.New("invalid namespace")
	ErrEmptySourceID    = goerr.New("source ID is empty")
	ErrInvalidLimit     = goerr.New("limit must be positive")
	ErrInvalidBonus     = goerr.New("keyword bonus weight must be in [0,1]")
	ErrInvalidFilter    = goerr.New("invalid search filter")
)
