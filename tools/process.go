package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/eolguard/eol"
	"github.com/lexandro/eolguard/processor"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProcessArgs defines the input parameters for the eolguard_validate and eolguard_fix tools.
type ProcessArgs struct {
	Path   string `json:"path" jsonschema:"File or directory to process. Relative paths resolve against the server's working directory"`
	Ending string `json:"ending" jsonschema:"Target line ending: unix (LF) or windows (CRLF)"`
	Force  bool   `json:"force,omitempty" jsonschema:"eolguard_fix only: delete originals permanently instead of moving them to the trash"`
}

// ProcessRequest is one validate or fix run over a path.
type ProcessRequest struct {
	Action processor.Action
	Ending eol.Ending
	Path   string
	Force  bool
}

// ProcessResult is what a run produced.
type ProcessResult struct {
	OK     bool
	Stats  processor.Stats
	Output string // console lines the run would have printed
}

// ProcessFunc runs a request against the shared index.
// It is provided by main.go to avoid circular dependencies.
type ProcessFunc func(request ProcessRequest) (ProcessResult, error)

// ProcessHandler serves one of the eolguard_validate and eolguard_fix tools.
type ProcessHandler struct {
	Action    processor.Action
	DoProcess ProcessFunc
	Logger    *slog.Logger
}

// ToolName returns the MCP tool name for the handler's action.
func (h *ProcessHandler) ToolName() string {
	return "eolguard_" + h.Action.String()
}

// Handle processes an eolguard_validate or eolguard_fix request.
func (h *ProcessHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ProcessArgs) (*mcp.CallToolResult, any, error) {
	name := h.ToolName()

	if args.Path == "" {
		h.Logger.Warn(name+" called without a path")
		return errorResult("Error: path parameter is required"), nil, nil
	}
	ending, err := eol.ParseEnding(args.Ending)
	if err != nil {
		h.Logger.Warn(name+" called with bad ending", "ending", args.Ending)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	start := time.Now()
	result, err := h.DoProcess(ProcessRequest{
		Action: h.Action,
		Ending: ending,
		Path:   args.Path,
		Force:  args.Force,
	})
	if err != nil {
		h.Logger.Error(name+" failed", "path", args.Path, "error", err)
		return errorResult(fmt.Sprintf("%s error: %v", h.Action, err)), nil, nil
	}
	elapsed := time.Since(start)

	h.Logger.Info(name+" complete",
		"path", args.Path,
		"ok", result.OK,
		"checked", result.Stats.Checked(),
		"elapsed", elapsed,
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatProcessResult(h.Action, ending, args.Path, result, elapsed)}},
	}, nil, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
