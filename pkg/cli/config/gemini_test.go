package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/cli/config"
	"github.com/unihelpdesk/helpdesk/pkg/service/embedding"
)

func TestGemini_Configure(t *testing.T) {
	t.Run("falls back to local embedder when project ID is empty", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1", 768)
		emb, err := cfg.Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, emb.Model()).Equal(embedding.LocalModelName)
	})

	t.Run("rejects non-positive dimension", func(t *testing.T) {
		cfg := config.NewGeminiForTest("my-project", "us-central1", 0)
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "", 0)
		flags := cfg.Flags()
		gt.Value(t, len(flags)).Equal(3)
	})
}
