package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/cli/config"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/repository/memory"
	"github.com/unihelpdesk/helpdesk/pkg/service/embedding"
	"github.com/unihelpdesk/helpdesk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var geminiCfg config.Gemini
	var knowledgeCfg config.Knowledge

	var flags []cli.Flag
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, knowledgeCfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Match one question against the knowledge source",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.New("question is required")
			}

			embedder, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedder")
			}
			cache, closeCache, err := knowledgeCfg.Cache()
			if err != nil {
				return err
			}
			defer closeCache()

			source, err := knowledgeCfg.Source()
			if err != nil {
				return err
			}

			uc := usecase.New(memory.New(),
				usecase.WithEmbedder(embedding.WithCache(embedder, cache)),
				usecase.WithKnowledgeSource(source),
				usecase.WithBuildConcurrency(knowledgeCfg.Concurrency()),
			)
			if _, err := uc.Knowledge.Reload(ctx); err != nil {
				return err
			}

			result, err := uc.Match.Match(ctx, question)
			if err != nil {
				return err
			}

			printMatch(os.Stdout, result)
			return nil
		},
	}
}

func printMatch(w io.Writer, result *model.MatchResult) {
	if result.Answered {
		color.New(color.FgGreen, color.Bold).Fprintln(w, result.Answer)
	} else {
		color.New(color.FgYellow).Fprintln(w, "No confident answer; this question would be escalated to a ticket.")
	}

	if result.MatchedQuestion != "" {
		color.New(color.Faint).Fprintf(w, "closest: %q (score %.4f, threshold %.2f)\n",
			result.MatchedQuestion, result.Score, model.ConfidenceThreshold)
	}
	_, _ = fmt.Fprintln(w)
}
