package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"

	"github.com/equitylens/strata/pkg/domain/interfaces"
	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/utils/logging"
)

// DefaultConcurrency caps parallel per-text embedding calls when the
// lenient path falls back from batch embedding
const DefaultConcurrency = 4

// Client adapts a gollem LLM client to the EmbeddingClient interface
type Client struct {
	llm         gollem.LLMClient
	dimension   int
	concurrency int
}

var _ interfaces.EmbeddingClient = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithDimension overrides the embedding vector dimension
func WithDimension(dim int) Option {
	return func(c *Client) {
		c.dimension = dim
	}
}

// WithConcurrency caps the number of concurrent per-text embedding
// calls in EmbedLenient's fallback path
func WithConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// New creates an embedding client backed by the given LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llm:         llmClient,
		dimension:   model.EmbeddingDimension,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.concurrency < 1 {
		c.concurrency = 1
	}

	return c, nil
}

// Embed returns one vector per text via a single batch call. Any
// provider failure fails the whole call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := c.llm.GenerateEmbedding(ctx, c.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings",
			goerr.V("count", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(texts)), goerr.V("got", len(embeddings)))
	}

	vectors := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return nil, goerr.New("embedding generation returned empty vector",
				goerr.V("index", i))
		}
		vectors[i] = toFloat32(emb)
	}

	return vectors, nil
}

// EmbedLenient returns one vector per text in input order. It first
// attempts one batch call; if that fails it retries per text with
// bounded concurrency, and a text that still fails yields a nil vector
// instead of failing the call. Only context cancellation aborts.
func (c *Client) EmbedLenient(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := c.Embed(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	if ctx.Err() != nil {
		return nil, goerr.Wrap(ctx.Err(), "embedding canceled")
	}

	logging.From(ctx).Warn("batch embedding failed, retrying per text",
		"count", len(texts), "error", err.Error())

	vectors = make([][]float32, len(texts))

	var eg errgroup.Group
	eg.SetLimit(c.concurrency)
	for i, text := range texts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vec, err := c.Embed(ctx, []string{text})
			if err != nil {
				logging.From(ctx).Warn("embedding failed for text, storing empty vector",
					"index", i, "error", err.Error())
				return nil
			}
			vectors[i] = vec[0]
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "embedding canceled")
	}

	return vectors, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
