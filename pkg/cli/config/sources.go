package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/service/source"
	"github.com/equitylens/strata/pkg/utils/logging"
)

// Sources holds CLI flags for the source document store
type Sources struct {
	bucket string
}

// Flags returns CLI flags for source store configuration
func (s *Sources) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source-bucket",
			Usage:       "Cloud Storage bucket holding source documents",
			Sources:     cli.EnvVars("STRATA_SOURCE_BUCKET"),
			Destination: &s.bucket,
		},
	}
}

// Configure creates a GCS-backed source store. The weight table maps
// source kinds to authority weights; nil uses the defaults.
func (s *Sources) Configure(ctx context.Context, weights map[types.SourceKind]float64) (*source.GCSStore, error) {
	if s.bucket == "" {
		return nil, goerr.New("source-bucket is required")
	}

	var opts []source.GCSOption
	if weights != nil {
		opts = append(opts, source.WithAuthorityWeights(weights))
	}

	store, err := source.NewGCSStore(ctx, s.bucket, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize source store",
			goerr.V("bucket", s.bucket))
	}

	logging.Default().Info("Using GCS source store", "bucket", s.bucket)
	return store, nil
}
