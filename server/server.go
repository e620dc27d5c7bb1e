package server

import (
	"github.com/lexandro/eolguard/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	validateHandler *tools.ProcessHandler,
	fixHandler *tools.ProcessHandler,
	statusHandler *tools.StatusHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "eolguard",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server checks and normalizes line endings (LF for unix, CRLF for windows) in text files.

- Use eolguard_validate to report files whose line endings do not match the target convention
- Use eolguard_fix to rewrite non-conforming files; originals go to the trash unless force is set
- Use eolguard_status to see what the persistent index knows: valid, invalid, modified and missing files
- Files unchanged since they were last found valid are skipped without being read`,
		},
	)

	// Register eolguard_validate tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: validateHandler.ToolName(),
		Description: `Validate line endings of a file or every eligible file under a directory.

Endings:
  - "unix": every line break must be LF; any CRLF is a violation
  - "windows": every LF must be preceded by CR
A lone CR is never a violation. Lists each non-conforming file.`,
	}, validateHandler.Handle)

	// Register eolguard_fix tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: fixHandler.ToolName(),
		Description: `Rewrite a file, or every eligible file under a directory, to the target line ending.

Content is decoded from its detected charset and written back as UTF-8. Files that already conform are left untouched. Set force to delete originals permanently instead of moving them to the trash.`,
	}, fixHandler.Handle)

	// Register eolguard_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "eolguard_status",
		Description: "Show index status: entry count, valid and invalid files, files modified since their last check, and files gone from disk.",
	}, statusHandler.Handle)

	return mcpServer
}
