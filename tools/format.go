package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexandro/eolguard/eol"
	"github.com/lexandro/eolguard/index"
	"github.com/lexandro/eolguard/processor"
)

// maxListedPaths caps each path list in a status report.
const maxListedPaths = 20

// FormatProcessResult formats a validate or fix run as human-readable text.
func FormatProcessResult(action processor.Action, ending eol.Ending, path string, result ProcessResult, elapsed time.Duration) string {
	var builder strings.Builder

	verdict := "OK"
	if !result.OK {
		verdict = "FAILED"
	}
	stats := result.Stats
	builder.WriteString(fmt.Sprintf("%s %s %s: %s\n", action, ending, path, verdict))
	builder.WriteString(fmt.Sprintf("%d checked (%d cached, %d skipped), %d fixed, %d unchanged, %d invalid, %d failed in %s\n",
		stats.Checked(), stats.Cached, stats.Skipped, stats.Fixed, stats.Unchanged, stats.Invalid, stats.Failed,
		elapsed.Round(time.Millisecond)))

	if output := strings.TrimRight(result.Output, "\n"); output != "" {
		builder.WriteString("\n")
		builder.WriteString(output)
		builder.WriteString("\n")
	}

	return builder.String()
}

// FormatStatusReport formats an index verification report as human-readable text.
func FormatStatusReport(indexPath string, prefix string, report index.Report) string {
	var builder strings.Builder

	builder.WriteString("=== eolguard index ===\n\n")
	builder.WriteString(fmt.Sprintf("Index: %s\n", indexPath))
	if prefix != "" {
		builder.WriteString(fmt.Sprintf("Under: %s\n", prefix))
	}
	builder.WriteString(fmt.Sprintf("Entries: %d\n", report.Total))
	builder.WriteString(fmt.Sprintf("  valid:    %d\n", report.Valid))
	builder.WriteString(fmt.Sprintf("  invalid:  %d\n", report.Invalid))
	builder.WriteString(fmt.Sprintf("  modified: %d\n", report.Modified))
	builder.WriteString(fmt.Sprintf("  stale:    %d\n", report.Stale))

	writePathList(&builder, "Invalid", report.InvalidPaths)
	writePathList(&builder, "Modified since last check", report.ModifiedPaths)
	writePathList(&builder, "Missing on disk", report.StalePaths)

	return builder.String()
}

func writePathList(builder *strings.Builder, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	builder.WriteString(fmt.Sprintf("\n%s:\n", title))
	for i, path := range paths {
		if i == maxListedPaths {
			builder.WriteString(fmt.Sprintf("  ... and %d more\n", len(paths)-maxListedPaths))
			break
		}
		builder.WriteString(fmt.Sprintf("  %s\n", path))
	}
}
