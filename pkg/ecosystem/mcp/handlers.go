package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/actionspec/pkg/schema"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// Handlers implements the MCP tools over one validator.
type Handlers struct {
	Validator *validate.Validator
}

func (h *Handlers) validator() *validate.Validator {
	if h.Validator == nil {
		return validate.Default()
	}
	return h.Validator
}

// HandleValidate implements the actionspec/validate MCP tool.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	inline, _ := args["document"].(string)

	var (
		doc    any
		report *validate.Report
	)
	switch {
	case path != "":
		doc, report = h.validator().ValidateFile(path)
	case strings.TrimSpace(inline) != "":
		var err error
		doc, err = schema.Load(strings.NewReader(inline))
		if err != nil {
			return errorResult(fmt.Sprintf("[structural] %s", err)), nil
		}
		report = h.validator().Validate(doc)
	default:
		return errorResult("path or document argument is required"), nil
	}

	if !report.Valid() {
		return errorResult(formatErrors(report)), nil
	}

	var b strings.Builder
	title, links := "document", 0
	if report.Action != nil {
		title, links = report.Action.Title, len(report.Action.Links)
	}
	fmt.Fprintf(&b, "✓ %s is valid (%d links)", title, links)
	for _, w := range report.Warnings {
		fmt.Fprintf(&b, "\n⚠ %s", w)
	}
	return textResult(b.String()), nil
}

// HandleSchema implements the actionspec/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.GenerateJSONSchema(h.validator().Engine().Registry())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func formatErrors(r *validate.Report) string {
	return strings.Join(r.Verdict().Errors, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
