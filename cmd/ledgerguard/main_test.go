package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fubonFixture = "../../internal/extractor/testdata/fubon_statement.txt"

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMaskCommandStdin(t *testing.T) {
	stdout, stderr, err := execute(t, maskCmd(), "客戶 A123456789 手機 0912345678\n")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "A123456789")
	assert.NotContains(t, stdout, "0912345678")
	assert.Contains(t, stdout, "A********9")
	assert.Contains(t, stderr, "Masked 2 sensitive items")
}

func TestMaskCommandWritesFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("聯絡人 王小明 wang@example.com"), 0o600))

	output := filepath.Join(dir, "masked.txt")
	report := filepath.Join(dir, "report.yaml")

	_, _, err := execute(t, maskCmd(), "", input,
		"--names", "王小明", "--output", output, "--report", report, "--format", "yaml")
	require.NoError(t, err)

	masked, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(masked), "王小明")
	assert.NotContains(t, string(masked), "wang@example.com")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mask_count: 2")
	assert.Contains(t, string(data), "type: custom_name")
	assert.NotContains(t, string(data), "wang@example.com")
}

func TestMaskCommandUnknownType(t *testing.T) {
	_, _, err := execute(t, maskCmd(), "text", "--types", "passport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passport")
}

func TestDetectCommandHidesOriginals(t *testing.T) {
	stdout, _, err := execute(t, detectCmd(), "手機 0912345678", "--json")
	require.NoError(t, err)

	var findings []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &findings))
	require.Len(t, findings, 1)
	assert.Equal(t, "phone", findings[0]["type"])
	assert.Empty(t, findings[0]["original"])

	stdout, _, err = execute(t, detectCmd(), "手機 0912345678", "--show-original")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0912345678")
}

func TestExtractCommandWritesReports(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, extractCmd(), "", fubonFixture, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 1 reports")

	data, err := os.ReadFile(filepath.Join(dir, "fubon_statement.json"))
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	extraction := report["extraction"].(map[string]any)
	assert.Equal(t, true, extraction["success"])
	assert.Equal(t, "rule_based", extraction["method"])
	assert.Equal(t, "fubon_credit_card", extraction["extractor"])
	assert.Equal(t, extraction["id"], report["id"])

	masking, ok := report["masking"].(map[string]any)
	require.True(t, ok)
	findings, _ := masking["findings"].([]any)
	for _, f := range findings {
		assert.Empty(t, f.(map[string]any)["original"])
	}
}

func TestExtractCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "memo.txt")
	require.NoError(t, os.WriteFile(input, []byte("這是一份會議紀錄"), 0o600))

	stdout, _, err := execute(t, extractCmd(), "", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 documents failed")
	assert.Contains(t, stdout, "Extraction failed")

	_, _, err = execute(t, extractCmd(), "", filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
}

func TestExtractConfigOverlay(t *testing.T) {
	base, err := currentConfig()
	require.NoError(t, err)

	cmd := extractCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--ai", "--selection", "best", "--validate=false", "--aggressive"}))

	cfg := extractConfig(cmd, base)
	assert.True(t, cfg.Extraction.AIFallback)
	assert.False(t, cfg.Extraction.Validate)
	assert.Equal(t, "best", cfg.Extraction.Selection)
	assert.True(t, cfg.Privacy.Aggressive)

	assert.False(t, base.Extraction.AIFallback)
	assert.True(t, base.Extraction.Validate)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	tests := []struct {
		name    string
		body    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "valid bank statement",
			body: `{"document_type":"bank_statement","transactions":[],"account_info":{"account_number":"0123"},"balance_info":{"opening_balance":1,"closing_balance":2}}`,
			want: "Valid against bank_statement_schema",
		},
		{
			name:    "missing required field",
			body:    `{"document_type":"credit_card","transactions":[]}`,
			want:    "Invalid against credit_card_schema",
			wantErr: "validation against credit_card_schema failed",
		},
		{
			name:    "wrapped extraction result",
			body:    `{"extraction":{"data":{"document_type":"credit_card","transactions":[]}}}`,
			want:    "Invalid against credit_card_schema",
			wantErr: "validation against credit_card_schema failed",
		},
		{
			name:    "unknown document type",
			body:    `{"document_type":"memo"}`,
			wantErr: "cannot infer a schema",
		},
		{
			name:    "not an object",
			body:    `[1,2]`,
			wantErr: "input is not a JSON object",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(filepath.Base(t.Name())+string(rune('a'+i))+".json", tt.body)
			stdout, _, err := execute(t, validateCmd(), "", append([]string{path}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.want != "" {
				assert.Contains(t, stdout, tt.want)
			}
		})
	}
}

func TestListingCommands(t *testing.T) {
	tests := []struct {
		cmd  func() *cobra.Command
		want []string
	}{
		{typesCmd, []string{"taiwan_id", "phone", "long_number", "--aggressive", "custom_name"}},
		{extractorsCmd, []string{"fubon_credit_card", "bank_statement", "credit_card_schema"}},
		{schemasCmd, []string{"credit_card_schema", "bank_statement_schema"}},
		{versionCmd, []string{"ledgerguard dev"}},
	}

	for _, tt := range tests {
		cmd := tt.cmd()
		t.Run(cmd.Name(), func(t *testing.T) {
			stdout, _, err := execute(t, cmd, "")
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestSchemaShow(t *testing.T) {
	stdout, _, err := execute(t, schemasCmd(), "", "show", "credit_card_schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, "信用卡帳單")
	assert.Contains(t, stdout, "payment_info")

	_, _, err = execute(t, schemasCmd(), "", "show", "nope")
	require.Error(t, err)
}

func TestEncodeFormats(t *testing.T) {
	value := map[string]any{"amount": json.Number("7483"), "account": "123", "tags": []string{"a"}}

	data, err := encode(value, "yaml")
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "amount: 7483\n")
	assert.Contains(t, out, `account: "123"`)
	assert.Contains(t, out, "- a")

	data, err = encode(value, "json")
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	_, err = encode(value, "xml")
	require.Error(t, err)
}

func TestRecordPayload(t *testing.T) {
	record, err := recordPayload([]byte(`{"payload":{"document_type":"unknown"}}`))
	require.NoError(t, err)
	assert.Equal(t, "unknown", record["document_type"])

	_, err = inferSchema(record)
	require.Error(t, err)
	assert.ErrorContains(t, err, "--schema")
}

func TestCurrentConfigDefaults(t *testing.T) {
	cfg, err := currentConfig()
	require.NoError(t, err)
	assert.Equal(t, "first_match", cfg.Extraction.Selection)
	assert.IsType(t, &config.Config{}, cfg)
}
