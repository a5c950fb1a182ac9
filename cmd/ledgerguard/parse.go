package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Extract the text and metadata of a PDF",
		Long: `Read a PDF, trying the configured passwords when it is encrypted, and
print its text. With --output the text, pages and metadata are written as
JSON or YAML.

Examples:
  ledgerguard parse statement.pdf
  ledgerguard parse statement.pdf --password A123456789 --output doc.json`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().StringP("password", "p", "", "Password for an encrypted PDF")
	cmd.Flags().StringP("output", "o", "", "Write the parsed document to this file")
	cmd.Flags().StringP("format", "f", "json", "Output format (json, yaml)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	password, _ := cmd.Flags().GetString("password")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	documents := pdftext.NewExtractor(cfg.PDF.DefaultPasswords, slog.Default())
	doc, err := documents.ExtractFile(config.ExpandPath(args[0]), password)
	if err != nil {
		var encrypted *pdftext.EncryptedError
		if errors.As(err, &encrypted) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Pass --password or set PDF_DEFAULT_PASSWORDS"))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if output != "" {
		if err := writeOutput(out, output, format, doc); err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Parsed %d pages into %s", doc.TotalPages, output)))
		return err
	}

	_, err = fmt.Fprintln(out, doc.Text)
	return err
}
