package main

import (
	"fmt"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/Veraticus/ledgerguard/internal/privacy"
	"github.com/spf13/cobra"
)

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the personal data categories that can be masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			builtin := privacy.Builtins()
			rows := make([][]string, 0, len(builtin)+2)
			for _, c := range builtin {
				rows = append(rows, []string{c.ID, c.Name, "default"})
			}
			for _, c := range privacy.Aggressive() {
				rows = append(rows, []string{c.ID, c.Name, "--aggressive"})
			}
			rows = append(rows, []string{privacy.CategoryCustomName, "姓名", "--names"})

			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Name", "Enabled by"}, rows))
			return err
		},
	}
}
