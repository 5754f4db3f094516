package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini embedding client
type Gemini struct {
	projectID string
	location  string
	dimension int
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini embeddings (local embedder when empty)",
			Category:    "Embedding",
			Sources:     cli.EnvVars("HELPDESK_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "Embedding",
			Value:       "us-central1",
			Sources:     cli.EnvVars("HELPDESK_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Vector dimension requested from the embedding model",
			Category:    "Embedding",
			Value:       model.EmbeddingDimension,
			Sources:     cli.EnvVars("HELPDESK_EMBEDDING_DIMENSION"),
			Destination: &g.dimension,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Int("dimension", g.dimension),
	}
}

// Configure returns the Gemini embedder, or the offline n-gram embedder when
// no project is configured.
func (g *Gemini) Configure(ctx context.Context) (interfaces.Embedder, error) {
	if g.projectID == "" {
		return embedding.NewLocal(embedding.DefaultLocalDimension), nil
	}
	if g.dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", g.dimension))
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return embedding.NewLLM(client, fmt.Sprintf("gemini/%d", g.dimension), embedding.WithDimension(g.dimension))
}
