package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/eolguard/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the eolguard_status tool.
type StatusArgs struct {
	Path string `json:"path,omitempty" jsonschema:"Only report index entries under this file or directory"`
}

// StatusFunc verifies the shared index under a path prefix ("" for all).
// It is provided by main.go to avoid circular dependencies.
type StatusFunc func(prefix string) (index.Report, error)

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	DoStatus  StatusFunc
	IndexPath string
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes an eolguard_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	report, err := h.DoStatus(args.Path)
	if err != nil {
		h.Logger.Error("eolguard_status failed", "error", err)
		return errorResult(fmt.Sprintf("Status error: %v", err)), nil, nil
	}
	uptime := time.Since(h.StartTime)

	h.Logger.Info("eolguard_status",
		"entries", report.Total,
		"invalid", report.Invalid,
		"stale", report.Stale,
		"modified", report.Modified,
		"uptime", uptime,
	)

	text := fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)) +
		FormatStatusReport(h.IndexPath, args.Path, report)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
