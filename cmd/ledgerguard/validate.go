package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/Veraticus/ledgerguard/internal/model"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Validate a structured record against a schema",
		Long: `Validate a JSON record, or the output of 'ledgerguard extract', against a
schema. The schema is inferred from document_type unless --schema is given.

Examples:
  ledgerguard validate record.json
  ledgerguard validate record.json --schema credit_card_schema`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().StringP("schema", "s", "", "Schema id (default: inferred from document_type)")
	cmd.Flags().Bool("json", false, "Print the validation report as JSON")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	schemaID, _ := cmd.Flags().GetString("schema")
	asJSON, _ := cmd.Flags().GetBool("json")

	raw, err := os.ReadFile(config.ExpandPath(args[0]))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	record, err := recordPayload(raw)
	if err != nil {
		return common.NewUserError("input is not a JSON object", err)
	}

	if schemaID == "" {
		schemaID, err = inferSchema(record)
		if err != nil {
			return err
		}
	}

	report := newValidator(cfg.Schema).Validate(record, schemaID)

	if asJSON {
		if err := writeOutput(cmd.OutOrStdout(), "", "json", report); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderValidation(report)); err != nil {
		return err
	}

	if !report.Valid {
		return common.NewUserError(fmt.Sprintf("validation against %s failed", schemaID), nil)
	}
	return nil
}

// recordPayload unwraps extraction results and pipeline reports down to the record.
func recordPayload(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if extraction, ok := doc["extraction"].(map[string]any); ok {
		doc = extraction
	}
	if data, ok := doc["data"].(map[string]any); ok {
		return data, nil
	}
	if payload, ok := doc["payload"].(map[string]any); ok {
		return payload, nil
	}
	return doc, nil
}

func inferSchema(record map[string]any) (string, error) {
	docType, _ := record["document_type"].(string)
	if id, ok := model.DocumentType(docType).SchemaID(); ok {
		return id, nil
	}
	return "", common.NewUserError(
		fmt.Sprintf("cannot infer a schema for document_type %q, pass --schema", docType),
		common.ErrSchemaNotFound)
}
