package mcp

import (
	"context"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/skillguard/internal/adapters/outbound/codec"
	"github.com/abdidvp/skillguard/internal/application"
	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
)

// inputSource labels the tool argument in EMPTY_INPUT messages.
const inputSource = "input argument"

// ToolName maps a validator name onto its MCP tool name:
// validate-redirect-uri -> skillguard_validate_redirect_uri.
func ToolName(validator string) string {
	return "skillguard_" + strings.ReplaceAll(validator, "-", "_")
}

// registerTools registers one MCP tool per validator.
func registerTools(s *server.MCPServer, svc *application.ValidateService) {
	for _, c := range svc.Tools() {
		opts := []mcplib.ToolOption{
			mcplib.WithDescription(c.Description + ". Returns the canonical JSON result envelope."),
			mcplib.WithString("input",
				mcplib.Required(),
				mcplib.Description("The request as a JSON object string"),
			),
		}
		if c.Name == contract.ToolOutputSchema {
			opts = append(opts,
				mcplib.WithString("schema",
					mcplib.Description("Schema to check against: "+strings.Join(contract.SchemaNames(), ", ")+" (default: envelope)"),
				),
				mcplib.WithBoolean("strict", mcplib.Description("Treat unknown top-level keys as errors")),
			)
		}
		s.AddTool(mcplib.NewTool(ToolName(c.Name), opts...), handleValidate(svc, c.Name))
	}
}

func handleValidate(svc *application.ValidateService, tool string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		input := request.GetString("input", "")

		var res *domain.Result
		if strings.TrimSpace(input) == "" {
			res = domain.Failure(tool, domain.NewEntry(domain.CodeEmptyInput, "", inputSource))
		} else {
			opts := contract.Options{
				Schema: request.GetString("schema", ""),
				Strict: request.GetBool("strict", false),
			}
			res = svc.Run(tool, inputSource, []byte(input), opts)
		}
		return envelopeResult(res)
	}
}

// envelopeResult returns the canonical envelope as text. A failed
// validation is reported through IsError so agents do not have to parse.
func envelopeResult(res *domain.Result) (*mcplib.CallToolResult, error) {
	data, ok := codec.Envelope(res)
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
		IsError: !ok,
	}, nil
}
