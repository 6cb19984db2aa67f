package interfaces

import (
	"context"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
)

// SourceStore resolves source documents by ID within a namespace. The
// returned Source carries its body text and the authority weight
// resolved from its kind.
type SourceStore interface {
	Get(ctx context.Context, namespace types.Namespace, sourceID string) (*model.Source, error)
}
