package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/Veraticus/ledgerguard/internal/pdftext"
	"github.com/Veraticus/ledgerguard/internal/pipeline"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>...",
		Short: "Extract structured records from statements",
		Long: `Mask and extract one or more statements. Each document is matched against
the rule-based extractors. With --ai, documents no extractor understands
are sent, masked, to the configured LLM.

When --output names an existing directory one report per document is
written there. Otherwise all reports go to the single output file.

Examples:
  ledgerguard extract fubon_2024_08.pdf
  ledgerguard extract statements/*.pdf --output reports/ --format yaml
  ledgerguard extract notice.pdf --ai --password A123456789`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	addPrivacyFlags(cmd)
	cmd.Flags().StringP("password", "p", "", "Password for encrypted PDFs")
	cmd.Flags().Bool("ai", false, "Fall back to the LLM when no extractor succeeds")
	cmd.Flags().Bool("validate", true, "Validate records against their schema")
	cmd.Flags().Bool("mask-input", false, "Run the extractors on masked text")
	cmd.Flags().String("selection", "", "Extractor selection policy (first_match, best_confidence)")
	cmd.Flags().StringP("output", "o", "", "Write reports to this file or directory")
	cmd.Flags().StringP("format", "f", "json", "Report format (json, yaml)")
	cmd.Flags().Bool("json", false, "Print reports as JSON instead of a summary")
	cmd.Flags().Bool("show-original", false, "Keep unmasked values in the masking report")

	return cmd
}

// extractConfig overlays the extraction flags that were set on the configured values.
func extractConfig(cmd *cobra.Command, base *config.Config) config.Config {
	cfg := *base
	cfg.Privacy = privacyConfig(cmd, base.Privacy)
	if cmd.Flags().Changed("ai") {
		cfg.Extraction.AIFallback, _ = cmd.Flags().GetBool("ai")
	}
	if cmd.Flags().Changed("validate") {
		cfg.Extraction.Validate, _ = cmd.Flags().GetBool("validate")
	}
	if cmd.Flags().Changed("mask-input") {
		cfg.Extraction.MaskBeforeExtract, _ = cmd.Flags().GetBool("mask-input")
	}
	if cmd.Flags().Changed("selection") {
		cfg.Extraction.Selection, _ = cmd.Flags().GetString("selection")
	}
	return cfg
}

func runExtract(cmd *cobra.Command, args []string) error {
	base, err := currentConfig()
	if err != nil {
		return err
	}
	cfg := extractConfig(cmd, base)

	masker, err := newMasker(cfg.Privacy)
	if err != nil {
		return err
	}
	manager, err := newManager(&cfg, masker)
	if err != nil {
		return err
	}
	processor := pipeline.NewProcessor(
		pdftext.NewExtractor(cfg.PDF.DefaultPasswords, slog.Default()),
		masker, manager, slog.Default())

	password, _ := cmd.Flags().GetString("password")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	asJSON, _ := cmd.Flags().GetBool("json")
	showOriginal, _ := cmd.Flags().GetBool("show-original")

	opts := pipeline.Options{
		Password:          password,
		MaskBeforeExtract: cfg.Extraction.MaskBeforeExtract,
		Validate:          cfg.Extraction.Validate,
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), len(args))
	defer stop()

	var bar interface{ Add(int) error }
	if len(args) > 1 {
		bar = cli.NewProgressBar(cmd.ErrOrStderr(), len(args), "Extracting documents...")
	}

	reports := make([]*pipeline.Report, 0, len(args))
	failed := 0
	for i, path := range args {
		if ctx.Err() != nil {
			break
		}

		report, err := processor.ProcessFile(ctx, config.ExpandPath(path), opts)
		if err != nil {
			failed++
			slog.Error("Failed to process document", "file", path, "error", err)
		} else {
			if !report.Result.Success {
				failed++
			}
			if report.Masking != nil && !showOriginal {
				stripped := report.Masking.WithoutOriginals()
				report.Masking = &stripped
			}
			reports = append(reports, report)
		}

		handler.Progress(i + 1)
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Debug("Failed to update progress bar", "error", err)
			}
		}
	}

	if err := emitReports(cmd, reports, output, format, asJSON); err != nil {
		return err
	}

	if handler.WasInterrupted() {
		return common.NewUserError("extraction interrupted", ctx.Err())
	}
	if failed > 0 {
		return common.NewUserError(fmt.Sprintf("%d of %d documents failed", failed, len(args)), nil)
	}
	return nil
}

func emitReports(cmd *cobra.Command, reports []*pipeline.Report, output, format string, asJSON bool) error {
	out := cmd.OutOrStdout()

	switch {
	case output != "" && isDir(output):
		for _, report := range reports {
			name := strings.TrimSuffix(filepath.Base(report.SourceFile), filepath.Ext(report.SourceFile))
			path := filepath.Join(output, name+"."+extension(format))
			if err := writeOutput(out, path, format, report); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Wrote %d reports to %s", len(reports), output)))
		return err
	case output != "":
		var v any = reports
		if len(reports) == 1 {
			v = reports[0]
		}
		if err := writeOutput(out, output, format, v); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, cli.FormatSuccess("Wrote reports to "+output))
		return err
	case asJSON:
		return writeOutput(out, "", "json", reports)
	}

	for _, report := range reports {
		if _, err := fmt.Fprintf(out, "%s %s\n", cli.DocumentIcon, report.SourceFile); err != nil {
			return err
		}
		if report.Masking != nil {
			if _, err := fmt.Fprintln(out, cli.RenderMaskSummary(*report.Masking)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, cli.RenderExtraction(report.Result)); err != nil {
			return err
		}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(config.ExpandPath(path))
	return err == nil && info.IsDir()
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return "yaml"
	default:
		return "json"
	}
}
