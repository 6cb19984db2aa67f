// Package source provides stores that resolve a source document body
// and its authority metadata by namespace and ID.
package source

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound indicates the requested source does not exist in the store
var ErrNotFound = goerr.New("source not found")
