package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/Veraticus/ledgerguard/internal/extraction"
	"github.com/Veraticus/ledgerguard/internal/llm"
	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/Veraticus/ledgerguard/internal/privacy"
	"github.com/Veraticus/ledgerguard/internal/schema"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// currentConfig returns the configuration resolved by initConfig, or the
// defaults when a command runs without the root pre-run.
func currentConfig() (*config.Config, error) {
	if appCfg != nil {
		return appCfg, nil
	}
	v := viper.New()
	config.SetDefaults(v)
	return config.Load(v)
}

func newMasker(cfg config.PrivacyConfig) (*privacy.Masker, error) {
	return privacy.New(privacy.Options{
		Types:       cfg.Types,
		CustomNames: cfg.CustomNames,
		Aggressive:  cfg.Aggressive,
	}, slog.Default())
}

func newValidator(cfg config.SchemaConfig) *schema.Validator {
	var src schema.Source
	if cfg.Dir != "" {
		src = schema.DirSource(cfg.Dir)
	}
	return schema.NewValidator(src, slog.Default())
}

func newAnalyzer(cfg config.LLMConfig) (*llm.DocumentAnalyzer, error) {
	client, err := llm.NewClient(llm.Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Endpoint:    cfg.Endpoint,
		Temperature: llm.Float64(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
		RateLimit:   cfg.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewDocumentAnalyzer(client, slog.Default()), nil
}

// newManager builds the extraction manager. The analyzer is only created when
// AI fallback is on so that a missing API key does not break offline use.
func newManager(cfg *config.Config, masker *privacy.Masker) (*extraction.Manager, error) {
	policy, err := extraction.ParseSelectionPolicy(cfg.Extraction.Selection)
	if err != nil {
		return nil, err
	}

	opts := extraction.Options{
		Selection:        policy,
		EnableAIFallback: cfg.Extraction.AIFallback,
	}
	if cfg.Extraction.MaskBeforeAI {
		opts.Masker = masker
	}

	var analyzer extraction.Analyzer
	if cfg.Extraction.AIFallback {
		a, err := newAnalyzer(cfg.LLM)
		if err != nil {
			return nil, err
		}
		analyzer = a
	}

	return extraction.NewManager(nil, newValidator(cfg.Schema), analyzer, opts, slog.Default())
}

// readText loads document text from path, or from stdin when path is empty or "-".
func readText(stdin io.Reader, documents *pdftext.Extractor, path, password string) (string, model.SourceMetadata, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", model.SourceMetadata{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), model.SourceMetadata{SourceFile: "stdin"}, nil
	}

	doc, err := documents.ExtractFile(config.ExpandPath(path), password)
	if err != nil {
		return "", model.SourceMetadata{}, err
	}
	return doc.Text, model.SourceMetadata{SourceFile: doc.SourceFile, TotalPages: doc.TotalPages}, nil
}

// encode renders v as JSON or YAML. YAML goes through the JSON encoding so
// that field names and decimal amounts match the JSON output.
func encode(v any, format string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}

	switch strings.ToLower(format) {
	case "", "json":
		return append(data, '\n'), nil
	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("failed to convert output to YAML: %w", err)
		}
		blockStyle(&node)

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, common.NewUserError("unsupported output format "+format, common.ErrInvalidConfig)
	}
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// writeOutput writes v to path, or to w when path is empty.
func writeOutput(w io.Writer, path, format string, v any) error {
	data, err := encode(v, format)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	path = config.ExpandPath(path)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Debug("Wrote output", "path", path, "bytes", len(data))
	return nil
}
