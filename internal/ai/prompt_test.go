package ai

import (
	"context"
	"testing"

	"github.com/makkenzo/niches-hunter-api/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestValidationPrompt(t *testing.T) {
	p := ValidationPrompt("  habit tracker for nurses ", "US hospitals")
	assert.Equal(t, "Idea: habit tracker for nurses\nTarget market: US hospitals\nAssess this niche.", p)

	p = ValidationPrompt("x", "   ")
	assert.NotContains(t, p, "Target market")
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.AIConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
