package usecase

import (
	"sync"

	"github.com/equitylens/strata/pkg/chunker"
	"github.com/equitylens/strata/pkg/domain/interfaces"
)

type UseCases struct {
	repo     interfaces.Repository
	embedder interfaces.EmbeddingClient
	sources  interfaces.SourceStore
	splitter *chunker.Splitter

	reindexLocks sourceLocks
}

type Option func(*UseCases)

// WithChunkerConfig overrides the default chunking thresholds
func WithChunkerConfig(cfg chunker.Config) Option {
	return func(uc *UseCases) {
		uc.splitter = chunker.New(cfg)
	}
}

func New(repo interfaces.Repository, embedder interfaces.EmbeddingClient, sources interfaces.SourceStore, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		embedder: embedder,
		sources:  sources,
		splitter: chunker.New(chunker.DefaultConfig()),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// sourceLocks serializes reindex runs per source. Concurrent reindexing
// of different sources is allowed; two runs on the same source would
// interleave delete and insert.
type sourceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (s *sourceLocks) get(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}
