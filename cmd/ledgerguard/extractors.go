package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/extraction"
	"github.com/spf13/cobra"
)

func extractorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extractors",
		Short: "List the registered rule-based extractors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := extraction.NewManager(nil, nil, nil, extraction.Options{}, slog.Default())
			if err != nil {
				return err
			}

			infos := manager.Extractors()
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.Name, info.DocumentType.DisplayName(), info.SchemaID})
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Name", "Document", "Schema"}, rows))
			return err
		},
	}
}
