package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/spf13/cobra"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "List personal data found in a document without masking it",
		Long: `Scan a document and report every finding with its category and offsets.
Original values are hidden unless --show-original is given.

Examples:
  ledgerguard detect statement.pdf
  ledgerguard detect statement.txt --show-original
  ledgerguard detect statement.pdf --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDetect,
	}

	addPrivacyFlags(cmd)
	cmd.Flags().StringP("password", "p", "", "Password for an encrypted PDF")
	cmd.Flags().Bool("show-original", false, "Print the unmasked values")
	cmd.Flags().Bool("json", false, "Print findings as JSON")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	masker, err := newMasker(privacyConfig(cmd, cfg.Privacy))
	if err != nil {
		return err
	}

	password, _ := cmd.Flags().GetString("password")
	showOriginal, _ := cmd.Flags().GetBool("show-original")
	asJSON, _ := cmd.Flags().GetBool("json")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	text, _, err := readText(cmd.InOrStdin(), pdftext.NewExtractor(cfg.PDF.DefaultPasswords, slog.Default()), path, password)
	if err != nil {
		return err
	}

	findings := masker.Detect(text)
	if !showOriginal {
		for i := range findings {
			findings[i].Original = ""
		}
	}

	if asJSON {
		return writeOutput(cmd.OutOrStdout(), "", "json", findings)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderFindings(findings, showOriginal))
	return err
}
