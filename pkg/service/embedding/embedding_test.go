package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/equitylens/strata/pkg/service/embedding"
)

// mockLLMSession is a mock gollem Session; the embedding client never
// opens sessions but the interface requires one.
type mockLLMSession struct{}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return &gollem.Response{}, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.generateEmbeddingFn != nil {
		return c.generateEmbeddingFn(ctx, dimension, input)
	}
	out := make([][]float64, len(input))
	for i := range input {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

func TestEmbed(t *testing.T) {
	t.Run("returns one vector per text", func(t *testing.T) {
		client, err := embedding.New(&mockLLMClient{})
		gt.NoError(t, err).Required()

		vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
		gt.NoError(t, err).Required()
		gt.Array(t, vectors).Length(2)
		gt.Value(t, vectors[0][0]).Equal(float32(0.1))
	})

	t.Run("empty input yields no vectors and no call", func(t *testing.T) {
		called := false
		client, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				called = true
				return nil, nil
			},
		})
		gt.NoError(t, err).Required()

		vectors, err := client.Embed(context.Background(), nil)
		gt.NoError(t, err)
		gt.Array(t, vectors).Length(0)
		gt.Bool(t, called).False()
	})

	t.Run("provider failure fails the call", func(t *testing.T) {
		client, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, errors.New("quota exceeded")
			},
		})
		gt.NoError(t, err).Required()

		_, err = client.Embed(context.Background(), []string{"alpha"})
		gt.Error(t, err)
	})

	t.Run("nil LLM client is rejected", func(t *testing.T) {
		_, err := embedding.New(nil)
		gt.Error(t, err)
	})
}

func TestEmbedLenient(t *testing.T) {
	t.Run("uses batch path when it succeeds", func(t *testing.T) {
		calls := 0
		client, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				calls++
				out := make([][]float64, len(input))
				for i := range input {
					out[i] = []float64{1}
				}
				return out, nil
			},
		})
		gt.NoError(t, err).Required()

		vectors, err := client.EmbedLenient(context.Background(), []string{"a", "b", "c"})
		gt.NoError(t, err).Required()
		gt.Array(t, vectors).Length(3)
		gt.Value(t, calls).Equal(1)
	})

	t.Run("degrades failed texts to nil vectors", func(t *testing.T) {
		client, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				if len(input) > 1 {
					return nil, errors.New("batch not supported")
				}
				if input[0] == "poison" {
					return nil, errors.New("unembeddable")
				}
				return [][]float64{{0.5}}, nil
			},
		}, embedding.WithConcurrency(2))
		gt.NoError(t, err).Required()

		vectors, err := client.EmbedLenient(context.Background(), []string{"ok", "poison", "fine"})
		gt.NoError(t, err).Required()
		gt.Array(t, vectors).Length(3)
		gt.Value(t, vectors[0][0]).Equal(float32(0.5))
		gt.Value(t, len(vectors[1])).Equal(0)
		gt.Value(t, vectors[2][0]).Equal(float32(0.5))
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client, err := embedding.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, ctx.Err()
			},
		})
		gt.NoError(t, err).Required()

		_, err = client.EmbedLenient(ctx, []string{"a"})
		gt.Error(t, err)
	})
}
