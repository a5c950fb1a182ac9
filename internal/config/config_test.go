package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnv(v))
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Empty(t, cfg.Privacy.Types)
	assert.False(t, cfg.Privacy.Aggressive)
	assert.Equal(t, "first_match", cfg.Extraction.Selection)
	assert.True(t, cfg.Extraction.Validate)
	assert.True(t, cfg.Extraction.MaskBeforeAI)
	assert.False(t, cfg.Extraction.AIFallback)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	v := newViper(t)
	require.NoError(t, ReadInConfig(v, "testdata/config.yaml"))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"taiwan_id", "phone", "email"}, cfg.Privacy.Types)
	assert.Equal(t, []string{"王小明", "陳美麗"}, cfg.Privacy.CustomNames)
	assert.True(t, cfg.Privacy.Aggressive)
	assert.True(t, cfg.Extraction.AIFallback)
	assert.True(t, cfg.Extraction.MaskBeforeExtract)
	assert.Equal(t, "best_confidence", cfg.Extraction.Selection)
	assert.Equal(t, "./schemas", cfg.Schema.Dir)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10, cfg.LLM.RateLimit)
	assert.Equal(t, []string{"A123456789", "19900101"}, cfg.PDF.DefaultPasswords)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReadInConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// No default config file is fine.
	require.NoError(t, ReadInConfig(viper.New(), ""))

	// An explicit file that does not exist is not.
	require.Error(t, ReadInConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")))

	dir := t.TempDir()
	bad := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging: [unterminated"), 0o600))
	require.Error(t, ReadInConfig(viper.New(), bad))
}

func TestBareEnvironmentNames(t *testing.T) {
	t.Setenv("PRIVACY_CUSTOM_NAMES", "王小明, 陳美麗 ,")
	t.Setenv("PDF_DEFAULT_PASSWORDS", "0000,A123456789")
	t.Setenv("PDF_PASSWORD_1", "19900101")
	t.Setenv("PDF_PASSWORD_2", "0912345678")
	t.Setenv("PDF_PASSWORD_4", "unreachable")
	t.Setenv("AI_ENDPOINT", "http://localhost:9000/generate")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	v := newViper(t)
	v.Set("llm.provider", "anthropic")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"王小明", "陳美麗"}, cfg.Privacy.CustomNames)
	assert.Equal(t, []string{"0000", "A123456789", "19900101", "0912345678"}, cfg.PDF.DefaultPasswords)
	assert.Equal(t, "http://localhost:9000/generate", cfg.LLM.Endpoint)
	assert.Equal(t, "anthropic-key", cfg.LLM.APIKey)
}

func TestProviderKeySelection(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Setenv("AI_API_KEY", "generic-key")

	tests := []struct {
		provider string
		want     string
	}{
		{provider: "openai", want: "openai-key"},
		{provider: "claude", want: "anthropic-key"},
		{provider: "custom", want: "generic-key"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			v := newViper(t)
			v.Set("llm.provider", tt.provider)

			cfg, err := Load(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LLM.APIKey)
		})
	}

	t.Run("explicit key wins", func(t *testing.T) {
		t.Setenv("LEDGERGUARD_LLM_API_KEY", "explicit")
		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.LLM.APIKey)
	})
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{key: "logging.level", value: "verbose"},
		{key: "logging.format", value: "xml"},
		{key: "llm.provider", value: "gemini"},
		{key: "extraction.selection", value: "random"},
		{key: "llm.temperature", value: 3.5},
		{key: "llm.max_tokens", value: -1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.True(t, common.IsConfigError(err))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LEDGERGUARD_TEST_DOTENV=from-file\nLEDGERGUARD_TEST_PRESET=from-file\n"), 0o600))

	t.Setenv("LEDGERGUARD_TEST_PRESET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("LEDGERGUARD_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "from-file", os.Getenv("LEDGERGUARD_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("LEDGERGUARD_TEST_PRESET"))
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/ledgerguard", DefaultConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "ledgerguard"), DefaultConfigDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGERGUARD_TEST_DIR", "/data")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/schemas", want: filepath.Join(home, "schemas")},
		{input: "$LEDGERGUARD_TEST_DIR/schemas", want: "/data/schemas"},
		{input: "relative/path", want: "relative/path"},
		{input: "$XDG_CONFIG_HOME/ledgerguard/schemas", want: filepath.Join(home, ".config", "ledgerguard", "schemas")},
		{input: "$XDG_DATA_HOME/ledgerguard", want: filepath.Join(home, ".local", "share", "ledgerguard")},
		{input: "$LEDGERGUARD_TEST_UNSET/x", want: "/x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
