package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/equitylens/strata/pkg/cli/config"
)

func TestGemini_Configure(t *testing.T) {
	t.Run("fails when project ID is empty", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1")
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err)
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "")
		gt.Value(t, len(cfg.Flags())).Equal(2)
	})
}
