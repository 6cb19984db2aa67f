package cli

import (
	"context"

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

func cmdSearch() *cli.Command {
	var limit int
	var namespaceStr string
	var levelStr string
	var minSimilarity float64
	var keywordBonus float64
	var withContext bool
	var compare bool
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of results",
			Value:       usecase.DefaultSearchLimit,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "namespace",
			Usage:       "Restrict to a namespace (report or primary-document)",
			Destination: &namespaceStr,
		},
		&cli.StringFlag{
			Name:        "level",
			Usage:       "Restrict to a chunk level (SUMMARY or DETAIL)",
			Destination: &levelStr,
		},
		&cli.FloatFlag{
			Name:        "min-similarity",
			Usage:       "Minimum cosine similarity for candidates",
			Destination: &minSimilarity,
		},
		&cli.FloatFlag{
			Name:        "keyword-bonus",
			Usage:       "Maximum keyword bonus added to the weighted score",
			Value:       usecase.DefaultKeywordBonusWeight,
			Destination: &keywordBonus,
		},
		&cli.BoolFlag{
			Name:        "context",
			Usage:       "Group results under their summary parents with siblings",
			Destination: &withContext,
		},
		&cli.BoolFlag{
			Name:        "compare",
			Usage:       "Compare weighted vs unweighted rankings",
			Destination: &compare,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"q"},
		Usage:     "Run an authority-weighted search",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one query argument is required")
			}
			query := c.Args().First()

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

			uc := usecase.New(repo, embedder, source.NewStaticStore())

			input := &usecase.SearchInput{
				Query:              query,
				Limit:              limit,
				Namespace:          types.Namespace(namespaceStr),
				Level:              types.ChunkLevel(levelStr),
				MinSimilarity:      minSimilarity,
				KeywordBonusWeight: keywordBonus,
			}

			switch {
			case compare:
				cmp, err := uc.CompareRanking(ctx, input)
				if err != nil {
					return err
				}
				printComparison(cmp)

			case withContext:
				groups, err := uc.SearchWithContext(ctx, input, true)
				if err != nil {
					return err
				}
				printGroups(groups)

			default:
				results, err := uc.Search(ctx, input)
				if err != nil {
					return err
				}
				printResults(results)
			}

			return nil
		},
	}
}

func printResults(results []*model.ScoredChunk) {
	if len(results) == 0 {
		color.New(color.FgYellow).Println("No results")
		return
	}

	for i, r := range results {
		color.New(color.FgCyan, color.Bold).Printf("%2d. ", i+1)
		color.New(color.FgWhite, color.Bold).Printf("score=%.4f ", r.WeightedScore)
		color.New(color.FgWhite).Printf("(sim=%.4f weight=%.2f bonus=%.2f) [%s]\n",
			r.Similarity, r.Chunk.AuthorityWeight, r.KeywordBonus, r.Chunk.Level)
		color.New(color.FgWhite).Printf("    %s\n", r.Chunk.Content)
	}
}

func printGroups(groups []*model.ChunkGroup) {
	if len(groups) == 0 {
		color.New(color.FgYellow).Println("No results")
		return
	}

	for i, g := range groups {
		color.New(color.FgCyan, color.Bold).Printf("%2d. ", i+1)
		color.New(color.FgWhite, color.Bold).Printf("max=%.4f ", g.MaxScore)
		color.New(color.FgWhite).Printf("%s\n", g.Parent.Content)
		for _, m := range g.Matches {
			color.New(color.FgGreen).Printf("    * %.4f %s\n", m.WeightedScore, m.Chunk.Content)
		}
		for _, sib := range g.Siblings {
			color.New(color.FgWhite).Printf("      %s\n", sib.Content)
		}
	}
}

func printComparison(cmp *model.RankComparison) {
	color.New(color.FgCyan, color.Bold).Println("Weighted ranking:")
	printResults(cmp.Weighted)
	color.New(color.FgCyan, color.Bold).Println("Unweighted ranking:")
	printResults(cmp.Unweighted)
	color.New(color.FgWhite, color.Bold).Printf("High-authority ranks: weighted=%v unweighted=%v\n",
		cmp.HighAuthorityRanksWeighted, cmp.HighAuthorityRanksUnweighted)
}
