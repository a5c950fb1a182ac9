package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. LEDGERGUARD_LLM_PROVIDER.
const EnvPrefix = "LEDGERGUARD"

// Config is the resolved application configuration.
type Config struct {
	LLM        LLMConfig
	Logging    LoggingConfig
	Schema     SchemaConfig
	Extraction ExtractionConfig
	PDF        PDFConfig
	Privacy    PrivacyConfig
}

// PrivacyConfig selects the masking categories.
type PrivacyConfig struct {
	Types       []string
	CustomNames []string
	Aggressive  bool
}

// ExtractionConfig controls the extraction manager and pipeline.
type ExtractionConfig struct {
	Selection         string
	AIFallback        bool
	Validate          bool
	MaskBeforeAI      bool
	MaskBeforeExtract bool
}

// SchemaConfig points at an optional schema directory. Empty means the built-in schemas.
type SchemaConfig struct {
	Dir string
}

// LLMConfig holds language model provider settings.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Endpoint    string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   int
}

// PDFConfig lists passwords tried on encrypted PDFs.
type PDFConfig struct {
	DefaultPasswords []string
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"console", "text", "json"}
	providers  = []string{"openai", "anthropic", "claude", "custom"}
	selections = []string{"first_match", "first", "best_confidence", "best"}
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("privacy.aggressive", false)
	v.SetDefault("extraction.ai_fallback", false)
	v.SetDefault("extraction.selection", "first_match")
	v.SetDefault("extraction.validate", true)
	v.SetDefault("extraction.mask_before_ai", true)
	v.SetDefault("extraction.mask_before_extract", false)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.rate_limit", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv enables LEDGERGUARD_* overrides and the bare variable names used by
// existing deployments.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"privacy.custom_names":  {"PRIVACY_CUSTOM_NAMES"},
		"pdf.default_passwords": {"PDF_DEFAULT_PASSWORDS"},
		"llm.endpoint":          {"AI_ENDPOINT"},
		"llm.openai_api_key":    {"OPENAI_API_KEY"},
		"llm.anthropic_api_key": {"ANTHROPIC_API_KEY"},
		"llm.generic_api_key":   {"AI_API_KEY"},
	}
	for key, names := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files, skipping missing ones.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		path = ExpandPath(path)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ReadInConfig reads cfgFile, or config.yaml from the default locations. A
// missing default config file is not an error.
func ReadInConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Privacy: PrivacyConfig{
			Types:       stringList(v, "privacy.types"),
			CustomNames: stringList(v, "privacy.custom_names"),
			Aggressive:  v.GetBool("privacy.aggressive"),
		},
		Extraction: ExtractionConfig{
			Selection:         strings.ToLower(v.GetString("extraction.selection")),
			AIFallback:        v.GetBool("extraction.ai_fallback"),
			Validate:          v.GetBool("extraction.validate"),
			MaskBeforeAI:      v.GetBool("extraction.mask_before_ai"),
			MaskBeforeExtract: v.GetBool("extraction.mask_before_extract"),
		},
		Schema: SchemaConfig{
			Dir: ExpandPath(v.GetString("schema.dir")),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			Endpoint:    v.GetString("llm.endpoint"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     v.GetDuration("llm.timeout"),
			RateLimit:   v.GetInt("llm.rate_limit"),
		},
		PDF: PDFConfig{
			DefaultPasswords: append(stringList(v, "pdf.default_passwords"), numberedEnv("PDF_PASSWORD_")...),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(v, cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"logging.level", c.Logging.Level, logLevels},
		{"logging.format", c.Logging.Format, logFormats},
		{"llm.provider", c.LLM.Provider, providers},
		{"extraction.selection", c.Extraction.Selection, selections},
	}
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("%w: %s must be one of %s, got %q",
				common.ErrInvalidConfig, check.key, strings.Join(check.allowed, ", "), check.value)
		}
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature must be between 0 and 2", common.ErrInvalidConfig)
	}
	if c.LLM.MaxTokens < 0 || c.LLM.RateLimit < 0 || c.LLM.Timeout < 0 {
		return fmt.Errorf("%w: llm limits must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

func providerKey(v *viper.Viper, provider string) string {
	switch provider {
	case "openai":
		return v.GetString("llm.openai_api_key")
	case "anthropic", "claude":
		return v.GetString("llm.anthropic_api_key")
	default:
		return v.GetString("llm.generic_api_key")
	}
}

// stringList reads a key that may be a YAML list or a comma separated string.
func stringList(v *viper.Viper, key string) []string {
	var raw []string
	switch value := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(value, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// numberedEnv collects prefix1, prefix2 ... up to the first unset variable.
func numberedEnv(prefix string) []string {
	var values []string
	for i := 1; ; i++ {
		value := strings.TrimSpace(os.Getenv(prefix + strconv.Itoa(i)))
		if value == "" {
			return values
		}
		values = append(values, value)
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
