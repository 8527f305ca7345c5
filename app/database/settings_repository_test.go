package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))
	ctx := context.Background()

	_, ok, err := repo.GetSetting(ctx, SettingOpenAIKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetSetting(ctx, SettingOpenAIKey, "sk-first"))
	require.NoError(t, repo.SetSetting(ctx, SettingOpenAIKey, "sk-second"))

	value, ok, err := repo.GetSetting(ctx, SettingOpenAIKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-second", value)

	require.NoError(t, repo.DeleteSetting(ctx, SettingOpenAIKey))
	_, ok, err = repo.GetSetting(ctx, SettingOpenAIKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
