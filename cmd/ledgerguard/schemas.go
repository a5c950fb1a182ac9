package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/cli"
	"github.com/spf13/cobra"
)

func schemasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List available schemas",
		Args:  cobra.NoArgs,
		RunE:  runSchemas,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <schema-id>",
		Short: "Show the fields of a schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchemaShow,
	})

	return cmd
}

func runSchemas(cmd *cobra.Command, _ []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	validator := newValidator(cfg.Schema)
	ids, err := validator.List()
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		info, err := validator.Info(id)
		if err != nil {
			rows = append(rows, []string{id, cli.ErrorStyle.Render(err.Error())})
			continue
		}
		rows = append(rows, []string{id, info.Title})
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Title"}, rows))
	return err
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	info, err := newValidator(cfg.Schema).Info(args[0])
	if err != nil {
		return err
	}

	body := strings.Join([]string{
		info.Description,
		"",
		cli.SubtleStyle.Render("Required: ") + strings.Join(info.Required, ", "),
		cli.SubtleStyle.Render("Properties: ") + strings.Join(info.Properties, ", "),
	}, "\n")

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.DocumentIcon+" "+info.Title, body))
	return err
}
