package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/spf13/cobra"
)

func summarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize a document with the configured LLM",
		Long: `Send a document to the configured LLM and print a short summary. The text
is masked first unless extraction.mask_before_ai is disabled.

Examples:
  ledgerguard summarize statement.pdf
  ledgerguard summarize notes.txt --max-length 100`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSummarize,
	}

	addPrivacyFlags(cmd)
	cmd.Flags().StringP("password", "p", "", "Password for an encrypted PDF")
	cmd.Flags().Int("max-length", 200, "Maximum summary length in characters")

	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	password, _ := cmd.Flags().GetString("password")
	maxLength, _ := cmd.Flags().GetInt("max-length")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	text, _, err := readText(cmd.InOrStdin(), pdftext.NewExtractor(cfg.PDF.DefaultPasswords, slog.Default()), path, password)
	if err != nil {
		return err
	}

	if cfg.Extraction.MaskBeforeAI {
		masker, err := newMasker(privacyConfig(cmd, cfg.Privacy))
		if err != nil {
			return err
		}
		masked := masker.ForContext(text).Mask(text)
		slog.Info("Masked document before summarizing", "findings", masked.Count)
		text = masked.Masked
	}

	analyzer, err := newAnalyzer(cfg.LLM)
	if err != nil {
		return err
	}

	summary, err := analyzer.Summarize(cmd.Context(), text, maxLength)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.RobotIcon+" Summary", summary))
	return err
}
