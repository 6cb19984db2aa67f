package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/equitylens/strata/pkg/cli/config"
	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/service/embedding"
	"github.com/equitylens/strata/pkg/service/source"
	"github.com/equitylens/strata/pkg/usecase"
)

// cmdIndex reindexes a single local document. Mainly for backfills and
// trying out chunking thresholds without a source bucket.
func cmdIndex() *cli.Command {
	var filePath string
	var sourceID string
	var namespaceStr string
	var kindStr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var chunkingCfg config.Chunking

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Usage:       "Path to the document to index",
			Required:    true,
			Destination: &filePath,
		},
		&cli.StringFlag{
			Name:        "source-id",
			Usage:       "Source ID to index the document under",
			Required:    true,
			Destination: &sourceID,
		},
		&cli.StringFlag{
			Name:        "namespace",
			Usage:       "Namespace of the source (report or primary-document)",
			Value:       string(types.NamespaceReport),
			Destination: &namespaceStr,
		},
		&cli.StringFlag{
			Name:        "kind",
			Usage:       "Source kind (earnings-call, filing, ir-material, analyst-report, report)",
			Required:    true,
			Destination: &kindStr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, chunkingCfg.Flags()...)

	return &cli.Command{
		Name:    "index",
		Aliases: []string{"i"},
		Usage:   "Chunk and index a single document",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			namespace, err := types.ParseNamespace(namespaceStr)
			if err != nil {
				return goerr.Wrap(err, "invalid namespace")
			}
			kind, err := types.ParseSourceKind(kindStr)
			if err != nil {
				return goerr.Wrap(err, "invalid source kind")
			}

			// #nosec G304 - path is expected to be provided by CLI argument
			body, err := os.ReadFile(filePath)
			if err != nil {
				return goerr.Wrap(err, "failed to read document", goerr.V("path", filePath))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer repo.Close() //nolint:errcheck // one-shot command

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			embedder, err := embedding.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to create embedding client")
			}

			chunkCfg, weights, err := chunkingCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load chunking configuration")
			}

			sources := source.NewStaticStore()
			sources.Put(&model.Source{
				ID:              sourceID,
				Namespace:       namespace,
				Kind:            kind,
				Body:            string(body),
				AuthorityWeight: kind.AuthorityWeight(weights),
			})

			uc := usecase.New(repo, embedder, sources,
				usecase.WithChunkerConfig(chunkCfg))

			result, err := uc.Reindex(ctx, namespace, sourceID)
			if err != nil {
				return goerr.Wrap(err, "failed to reindex document")
			}

			color.New(color.FgGreen, color.Bold).Printf("Indexed %s/%s\n", namespace, sourceID)
			color.New(color.FgWhite).Printf("  summaries: %d\n  details:   %d\n  total:     %d\n",
				result.SummaryCount, result.DetailCount, result.Total)
			if result.Degraded > 0 {
				color.New(color.FgYellow).Printf("  degraded:  %d (stored without embedding)\n", result.Degraded)
			}

			return nil
		},
	}
}
