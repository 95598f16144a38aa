package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/abdidvp/skillguard/internal/adapters/inbound/mcp"
)

func newMCPCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the skillguard MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(o))
	return cmd
}

func newMCPServeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start skillguard MCP server (stdio)",
		Long:  "Start the skillguard MCP server using stdio transport. Each validator is exposed as a tool that returns the same canonical envelope as the CLI.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := o.service()
			if err != nil {
				return err
			}
			s := mcpadapter.NewSkillguardMCPServer(svc, version)
			return server.ServeStdio(s)
		},
	}
}
