package source

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/interfaces"
	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/utils/safe"
)

// metadataKindKey is the GCS object metadata key carrying the source kind
const metadataKindKey = "kind"

// GCSStore resolves source documents from a Cloud Storage bucket.
// Objects are laid out as {namespace}/{sourceID}.txt and carry their
// kind in object metadata.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	weights map[types.SourceKind]float64
}

var _ interfaces.SourceStore = &GCSStore{}

// GCSOption is a functional option for GCSStore configuration
type GCSOption func(*GCSStore)

// WithAuthorityWeights overrides the default kind-to-weight table
func WithAuthorityWeights(weights map[types.SourceKind]float64) GCSOption {
	return func(s *GCSStore) {
		s.weights = weights
	}
}

// NewGCSStore creates a source store backed by the given bucket
func NewGCSStore(ctx context.Context, bucket string, opts ...GCSOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	s := &GCSStore{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *GCSStore) objectPath(namespace types.Namespace, sourceID string) string {
	return string(namespace) + "/" + sourceID + ".txt"
}

// Get downloads the source body and resolves its kind and authority
// weight from object metadata
func (s *GCSStore) Get(ctx context.Context, namespace types.Namespace, sourceID string) (*model.Source, error) {
	obj := s.client.Bucket(s.bucket).Object(s.objectPath(namespace, sourceID))

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "source object not found",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}
		return nil, goerr.Wrap(err, "failed to get object attributes",
			goerr.V("bucket", s.bucket), goerr.V("source_id", sourceID))
	}

	kind, err := types.ParseSourceKind(attrs.Metadata[metadataKindKey])
	if err != nil {
		return nil, goerr.Wrap(err, "object has invalid source kind metadata",
			goerr.V("bucket", s.bucket), goerr.V("source_id", sourceID))
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", s.bucket), goerr.V("source_id", sourceID))
	}
	defer safe.Close(ctx, reader)

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object body",
			goerr.V("bucket", s.bucket), goerr.V("source_id", sourceID))
	}

	return &model.Source{
		ID:              sourceID,
		Namespace:       namespace,
		Kind:            kind,
		Body:            string(body),
		AuthorityWeight: kind.AuthorityWeight(s.weights),
	}, nil
}

// Close releases the underlying storage client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
