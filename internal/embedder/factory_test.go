package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("explicit local provider", func(t *testing.T) {
		t.Setenv(EnvProvider, "local")
		t.Setenv(EnvOpenAIAPIKey, "sk-should-be-ignored")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderLocal, emb.Provider())
	})

	t.Run("explicit openai provider", func(t *testing.T) {
		t.Setenv(EnvProvider, "openai")
		t.Setenv(EnvOpenAIAPIKey, "sk-test")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, emb.Provider())
	})

	t.Run("api key auto-detects openai", func(t *testing.T) {
		t.Setenv(EnvProvider, "")
		t.Setenv(EnvOpenAIAPIKey, "sk-test")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, emb.Provider())
	})

	t.Run("bare environment falls back to local", func(t *testing.T) {
		t.Setenv(EnvProvider, "")
		t.Setenv(EnvOpenAIAPIKey, "")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderLocal, emb.Provider())
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		t.Setenv(EnvProvider, "jina")

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrUnsupportedModel)
	})
}

func TestNew(t *testing.T) {
	emb, err := New(Config{Provider: "local", CacheSize: 100})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())

	_, err = New(Config{Provider: "word2vec"})
	assert.Error(t, err)
}

func TestDetectProvider(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv(EnvProvider, "LOCAL")
	assert.Equal(t, ProviderLocal, DetectProvider())
}
