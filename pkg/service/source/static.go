package source

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/interfaces"
	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
)

// StaticStore holds sources in memory. It backs one-shot CLI indexing
// and tests.
type StaticStore struct {
	mu      sync.RWMutex
	sources map[string]*model.Source
}

var _ interfaces.SourceStore = &StaticStore{}

// NewStaticStore creates an empty in-memory source store
func NewStaticStore() *StaticStore {
	return &StaticStore{
		sources: make(map[string]*model.Source),
	}
}

func staticKey(namespace types.Namespace, sourceID string) string {
	return string(namespace) + "/" + sourceID
}

// Put registers a source in the store, replacing any previous entry
// with the same namespace and ID
func (s *StaticStore) Put(src *model.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *src
	s.sources[staticKey(src.Namespace, src.ID)] = &copied
}

// Get returns the source for the given namespace and ID
func (s *StaticStore) Get(ctx context.Context, namespace types.Namespace, sourceID string) (*model.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[staticKey(namespace, sourceID)]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "source not registered",
			goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
	}

	copied := *src
	return &copied, nil
}
