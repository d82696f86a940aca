package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "my-circle-users", cfg.UsersTableName)
	assert.Equal(t, 10, cfg.MatchLimit)
	assert.Equal(t, 2, cfg.MatchMinInterests)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("MATCH_LIMIT", "25")
	t.Setenv("MATCH_MIN_INTERESTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.MatchLimit)
	assert.Equal(t, 3, cfg.MatchMinInterests)
}

func TestLoad_InvalidMatchLimit(t *testing.T) {
	t.Setenv("MATCH_LIMIT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MATCH_LIMIT")
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{
		Port:              "8080",
		MatchLimit:        10,
		MatchMinInterests: 2,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEO4J_URI")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}
