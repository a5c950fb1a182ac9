// Package main contains the ledgerguard CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/Veraticus/ledgerguard/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	appCfg  *config.Config
	rootCmd = &cobra.Command{
		Use:   "ledgerguard",
		Short: "🛡️  Mask and extract Taiwanese financial statements",
		Long: `ledgerguard reads bank and credit card statements, masks personal data
before it leaves your machine, and extracts structured records that are
validated against JSON schemas.

Rule-based extractors run first. An LLM can be enabled as a fallback for
documents no extractor understands.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/ledgerguard/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(maskCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(typesCmd())
	rootCmd.AddCommand(schemasCmd())
	rootCmd.AddCommand(extractorsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	if err := config.BindEnv(v); err != nil {
		return err
	}
	if err := config.ReadInConfig(v, cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appCfg = cfg

	// Set up logging
	if err := common.SetupLogger(common.ParseLevel(cfg.Logging.Level), cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledgerguard %s\n", version)
		},
	}
}
