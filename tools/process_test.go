package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lexandro/eolguard/eol"
	"github.com/lexandro/eolguard/processor"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}

func Test_ProcessHandler_ValidateFailure(t *testing.T) {
	var got ProcessRequest
	h := &ProcessHandler{
		Action: processor.Validate,
		DoProcess: func(request ProcessRequest) (ProcessResult, error) {
			got = request
			return ProcessResult{
				OK:     false,
				Stats:  processor.Stats{Valid: 9, Invalid: 1},
				Output: "Invalid line ending in file: /src/a.txt\n",
			}, nil
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ProcessArgs{Path: "/src", Ending: "Unix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("a failing validation is a normal result, not a tool error")
	}

	if got.Action != processor.Validate || got.Ending != eol.Unix || got.Path != "/src" {
		t.Errorf("unexpected request passed through: %+v", got)
	}

	text := resultText(t, result)
	for _, check := range []string{
		"validate unix /src: FAILED",
		"10 checked",
		"1 invalid",
		"Invalid line ending in file: /src/a.txt",
	} {
		if !strings.Contains(text, check) {
			t.Errorf("expected output to contain %q, got:\n%s", check, text)
		}
	}
}

func Test_ProcessHandler_FixPassesForce(t *testing.T) {
	var got ProcessRequest
	h := &ProcessHandler{
		Action: processor.Fix,
		DoProcess: func(request ProcessRequest) (ProcessResult, error) {
			got = request
			return ProcessResult{OK: true, Stats: processor.Stats{Fixed: 2}}, nil
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ProcessArgs{Path: "docs", Ending: "windows", Force: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Force || got.Ending != eol.Windows || got.Action != processor.Fix {
		t.Errorf("unexpected request passed through: %+v", got)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "fix windows docs: OK") {
		t.Errorf("expected OK verdict, got:\n%s", text)
	}
	if !strings.Contains(text, "2 fixed") {
		t.Errorf("expected fixed count, got:\n%s", text)
	}
}

func Test_ProcessHandler_MissingPath(t *testing.T) {
	called := false
	h := &ProcessHandler{
		Action: processor.Validate,
		DoProcess: func(ProcessRequest) (ProcessResult, error) {
			called = true
			return ProcessResult{}, nil
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ProcessArgs{Ending: "unix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for missing path")
	}
	if called {
		t.Error("expected no run for invalid arguments")
	}
}

func Test_ProcessHandler_BadEnding(t *testing.T) {
	h := &ProcessHandler{
		Action: processor.Validate,
		DoProcess: func(ProcessRequest) (ProcessResult, error) {
			t.Fatal("run should not happen")
			return ProcessResult{}, nil
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ProcessArgs{Path: ".", Ending: "mac"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for unknown ending")
	}
	if !strings.Contains(resultText(t, result), "mac") {
		t.Errorf("expected the bad value in the message, got: %s", resultText(t, result))
	}
}

func Test_ProcessHandler_RunError(t *testing.T) {
	h := &ProcessHandler{
		Action: processor.Fix,
		DoProcess: func(ProcessRequest) (ProcessResult, error) {
			return ProcessResult{}, fmt.Errorf("%w: /nope", processor.ErrTargetNotFound)
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ProcessArgs{Path: "/nope", Ending: "unix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for failed run")
	}
	if !strings.Contains(resultText(t, result), "path should be valid file or directory") {
		t.Errorf("expected target error, got: %s", resultText(t, result))
	}
}

func Test_ProcessHandler_ToolName(t *testing.T) {
	if got := (&ProcessHandler{Action: processor.Fix}).ToolName(); got != "eolguard_fix" {
		t.Errorf("ToolName() = %q, want eolguard_fix", got)
	}
	if got := (&ProcessHandler{Action: processor.Validate}).ToolName(); got != "eolguard_validate" {
		t.Errorf("ToolName() = %q, want eolguard_validate", got)
	}
}
