package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/skillguard/internal/adapters/outbound/codec"
	"github.com/abdidvp/skillguard/internal/adapters/outbound/tui"
	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
)

func newCodesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the error taxonomy",
		Long:  "List every error and warning code with its severity, meaning and remediation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := domain.Taxonomy()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(codes)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderTaxonomy(codes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print a JSON Schema",
		Long:  "Print the JSON Schema (draft 2020-12) of the result envelope or of the skill output.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := contract.SchemaJSON(name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", contract.SchemaEnvelope, "Schema name (envelope, skill-output)")
	return cmd
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [envelope-file]",
		Short: "Render an envelope for humans",
		Long:  "Read an envelope printed by a validator, from a file or stdin, and render it for a human reader.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			data, err := codec.ReadSource(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			env, err := codec.DecodeEnvelope(data)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderEnvelope(env))
			return nil
		},
	}
}
