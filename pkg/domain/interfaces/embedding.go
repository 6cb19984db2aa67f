package interfaces

import "context"

// EmbeddingClient converts texts into fixed-length float vectors
type EmbeddingClient interface {
	// Embed returns one vector per input text. Any provider failure
	// fails the whole call; used for query embedding where a partial
	// result is meaningless.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedLenient returns one vector per input text, in input order.
	// A text whose embedding fails yields a nil vector instead of
	// failing the call; only context cancellation aborts. Used during
	// indexing so one bad chunk never blocks a whole document.
	EmbedLenient(ctx context.Context, texts []string) ([][]float32, error)
}
