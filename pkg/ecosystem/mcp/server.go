// Package mcp exposes action validation as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// NewServer creates a new MCP server with the actionspec tools registered.
// A nil validator selects validate.Default.
func NewServer(version string, v *validate.Validator) *server.MCPServer {
	s := server.NewMCPServer(
		"actionspec",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{Validator: v}

	s.AddTool(
		mcp.NewTool("actionspec/validate",
			mcp.WithDescription("Validate an action document given as a file path or inline JSON"),
			mcp.WithString("path", mcp.Description("Path to a JSON or YAML action document")),
			mcp.WithString("document", mcp.Description("Inline JSON action document (used when path is empty)")),
		),
		h.HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("actionspec/schema",
			mcp.WithDescription("Export the action document JSON Schema (Draft 2020-12)"),
		),
		h.HandleSchema,
	)

	return s
}
