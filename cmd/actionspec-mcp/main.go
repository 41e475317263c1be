// Package main provides the actionspec-mcp binary, an MCP server exposing
// action validation to AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	amcp "github.com/ormasoftchile/actionspec/pkg/ecosystem/mcp"
)

var version = "dev"

func main() {
	s := amcp.NewServer(version, nil)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
