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

// toolCommands builds one subcommand per validator.
func toolCommands(o *rootOptions) []*cobra.Command {
	var cmds []*cobra.Command
	for _, c := range contract.Tools() {
		cmds = append(cmds, newToolCmd(o, c))
	}
	return cmds
}

func newToolCmd(o *rootOptions, c contract.Catalog) *cobra.Command {
	var opts contract.Options

	cmd := &cobra.Command{
		Use:   c.Name + " [input-file]",
		Short: c.Description,
		Long: c.Description + ".\n\nReads one JSON object from input-file, or from stdin when it is omitted, " +
			"and prints one canonical JSON envelope. Exit code is 0 only when ok is true.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return emitUsageError(cmd, c.Name, fmt.Errorf("accepts at most one input file, got %d arguments", len(args)))
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return emit(cmd, o.runTool(cmd, c.Name, path, opts))
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return emitUsageError(cmd, c.Name, err)
	})

	if c.Name == contract.ToolOutputSchema {
		cmd.Flags().StringVar(&opts.Schema, "schema", contract.SchemaEnvelope, "Schema to check against (envelope, skill-output)")
		cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Treat unknown top-level keys as errors")
	}
	return cmd
}

// emit writes the envelope and turns a written ok=false into
// ErrValidationFailed.
func emit(cmd *cobra.Command, res *domain.Result) error {
	ok, err := codec.Emit(cmd.OutOrStdout(), res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrValidationFailed
	}
	return nil
}

// emitUsageError reports a bad invocation of a tool as an envelope so the
// caller still gets exactly one line on stdout.
func emitUsageError(cmd *cobra.Command, tool string, err error) error {
	return emit(cmd, domain.Failure(tool, domain.NewEntry(domain.CodeInternalError, "", "usage: "+err.Error())))
}

// runTool always produces a result: setup failures become envelopes too.
func (o *rootOptions) runTool(cmd *cobra.Command, tool, path string, opts contract.Options) *domain.Result {
	svc, err := o.service()
	if err != nil {
		o.logger.Error("setup failed", "tool", tool, "error", err)
		return domain.Failure(tool, domain.NewEntry(domain.CodeInternalError, "", err.Error()))
	}

	source := codec.StdinSource
	if path != "" {
		source = path
	}
	raw, err := codec.ReadSource(path, cmd.InOrStdin())
	if err != nil {
		o.logger.Warn("input unreadable", "tool", tool, "error", err)
		return domain.Failure(tool, domain.NewEntry(domain.CodeEmptyInput, "", source))
	}
	return svc.Run(tool, source, raw, opts)
}

func newToolsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available validators",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := contract.Tools()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			lines := make([]tui.ToolLine, len(catalog))
			for i, c := range catalog {
				lines[i] = tui.ToolLine{Name: c.Name, Description: c.Description}
			}
			_, err := cmd.OutOrStdout().Write([]byte(tui.RenderTools(lines)))
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
