package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/skillguard/internal/application"
)

// NewSkillguardMCPServer creates an MCP server exposing every validator as a
// tool plus the error taxonomy and envelope schema as resources.
func NewSkillguardMCPServer(svc *application.ValidateService, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"skillguard",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, svc)
	registerResources(s)

	return s
}
