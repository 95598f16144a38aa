package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
)

// Resource URIs.
const (
	CodesURI          = "skillguard://codes"
	schemaURIPrefix   = "skillguard://schema/"
	EnvelopeSchemaURI = schemaURIPrefix + contract.SchemaEnvelope
)

// registerResources registers the taxonomy and one resource per schema.
func registerResources(s *server.MCPServer) {
	s.AddResource(
		mcplib.NewResource(
			CodesURI,
			"Error Codes",
			mcplib.WithResourceDescription("Every error and warning code with its severity, message and remediation"),
			mcplib.WithMIMEType("application/json"),
		),
		handleCodesResource,
	)

	for _, name := range contract.SchemaNames() {
		s.AddResource(
			mcplib.NewResource(
				schemaURIPrefix+name,
				"Schema: "+name,
				mcplib.WithResourceDescription("JSON Schema accepted by validate-output-schema --schema "+name),
				mcplib.WithMIMEType("application/schema+json"),
			),
			handleSchemaResource(name),
		)
	}
}

func handleCodesResource(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(domain.Taxonomy(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling taxonomy: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func handleSchemaResource(name string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := contract.SchemaJSON(name)
		if err != nil {
			return nil, err
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/schema+json",
				Text:     string(data),
			},
		}, nil
	}
}
