package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/Veraticus/ledgerguard/internal/privacy"
	"github.com/spf13/cobra"
)

func maskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mask [file]",
		Short: "Mask personal data in a document",
		Long: `Mask national ids, phone numbers, card numbers, accounts, addresses and
other personal data. The input may be a PDF, a text file, or stdin.

Examples:
  ledgerguard mask statement.pdf
  ledgerguard mask statement.txt --names 王小明,李大華 --output masked.txt
  ledgerguard mask --types taiwan_id,phone < notes.txt
  ledgerguard mask statement.pdf --aggressive --report findings.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMask,
	}

	addPrivacyFlags(cmd)
	cmd.Flags().StringP("password", "p", "", "Password for an encrypted PDF")
	cmd.Flags().StringP("output", "o", "", "Write the masked text to this file instead of stdout")
	cmd.Flags().String("report", "", "Write the masking report to this file")
	cmd.Flags().StringP("format", "f", "json", "Report format (json, yaml)")
	cmd.Flags().Bool("show-original", false, "Keep unmasked values in the report")
	cmd.Flags().Bool("auto", false, "Tune categories to the document (statements keep amounts, identity documents are masked aggressively)")

	return cmd
}

func addPrivacyFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("types", "t", nil, "Mask only these categories (see 'ledgerguard types')")
	cmd.Flags().String("names", "", "Comma-separated personal names to mask")
	cmd.Flags().Bool("aggressive", false, "Also mask amounts and long digit runs")
}

// privacyConfig overlays the privacy flags that were set on the configured values.
func privacyConfig(cmd *cobra.Command, base config.PrivacyConfig) config.PrivacyConfig {
	cfg := base
	if cmd.Flags().Changed("types") {
		cfg.Types, _ = cmd.Flags().GetStringSlice("types")
	}
	if cmd.Flags().Changed("names") {
		names, _ := cmd.Flags().GetString("names")
		cfg.CustomNames = append(append([]string(nil), cfg.CustomNames...), privacy.ParseNames(names)...)
	}
	if cmd.Flags().Changed("aggressive") {
		cfg.Aggressive, _ = cmd.Flags().GetBool("aggressive")
	}
	return cfg
}

func runMask(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	masker, err := newMasker(privacyConfig(cmd, cfg.Privacy))
	if err != nil {
		return err
	}

	password, _ := cmd.Flags().GetString("password")
	output, _ := cmd.Flags().GetString("output")
	report, _ := cmd.Flags().GetString("report")
	format, _ := cmd.Flags().GetString("format")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	text, _, err := readText(cmd.InOrStdin(), pdftext.NewExtractor(cfg.PDF.DefaultPasswords, slog.Default()), path, password)
	if err != nil {
		return err
	}

	if auto, _ := cmd.Flags().GetBool("auto"); auto {
		masker = masker.ForContext(text)
	}

	result := masker.Mask(text)
	slog.Info("Masked document", "findings", result.Count, "types", result.CountByType())

	out := cmd.OutOrStdout()
	if output == "" {
		if _, err := fmt.Fprint(out, result.Masked); err != nil {
			return err
		}
		if !strings.HasSuffix(result.Masked, "\n") {
			_, _ = fmt.Fprintln(out)
		}
	} else {
		if err := writeFile(output, []byte(result.Masked)); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Masked text written to "+output))
	}

	if report != "" {
		written := result
		if showOriginal, _ := cmd.Flags().GetBool("show-original"); !showOriginal {
			written = result.WithoutOriginals()
		}
		if err := writeOutput(out, report, format, written); err != nil {
			return err
		}
	}

	// Keep stdout clean for piping when the masked text goes there.
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.RenderMaskSummary(result))
	return nil
}
