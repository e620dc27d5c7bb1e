package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/eolguard/index"
	"github.com/lexandro/eolguard/processor"
	"github.com/lexandro/eolguard/server"
	"github.com/lexandro/eolguard/tools"
)

// service runs tool calls against one loaded index, one call at a time.
type service struct {
	app   *app
	store *index.Store
	mu    sync.Mutex

	calls  int
	totals processor.Stats // summed over all calls since the server started
}

// process runs one validate or fix request and saves the index afterwards.
func (s *service) process(request tools.ProcessRequest) (tools.ProcessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, _, err := resolveTarget(request.Path)
	if err != nil {
		return tools.ProcessResult{}, err
	}

	var output bytes.Buffer
	proc, err := s.app.newProcessor(runOptions{
		action: request.Action,
		ending: request.Ending,
		target: request.Path,
		force:  request.Force,
	}, s.store, s.app.newMatcher(root), &output, &output)
	if err != nil {
		return tools.ProcessResult{}, err
	}

	ok, err := proc.Run(request.Path)
	if err != nil {
		return tools.ProcessResult{}, err
	}
	if err := s.store.Save(); err != nil {
		return tools.ProcessResult{}, err
	}

	stats := proc.Stats()
	s.calls++
	s.totals = s.totals.Add(stats)
	s.app.logger.Info("tool call complete",
		"action", request.Action,
		"path", request.Path,
		"ok", ok,
		"calls", s.calls,
		"total_checked", s.totals.Checked(),
		"total_fixed", s.totals.Fixed,
		"total_invalid", s.totals.Invalid,
	)

	return tools.ProcessResult{
		OK:     ok,
		Stats:  stats,
		Output: output.String(),
	}, nil
}

// status verifies the index under prefix, which may be relative.
func (s *service) status(prefix string) (index.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefix != "" {
		absPrefix, err := filepath.Abs(prefix)
		if err != nil {
			return index.Report{}, fmt.Errorf("resolving %s: %w", prefix, err)
		}
		prefix = absPrefix
	}
	return s.store.Verify(prefix), nil
}

func (a *app) runServe(ctx context.Context) error {
	startTime := time.Now()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	svc := &service{app: a, store: store}

	validateHandler := &tools.ProcessHandler{Action: processor.Validate, DoProcess: svc.process, Logger: a.logger}
	fixHandler := &tools.ProcessHandler{Action: processor.Fix, DoProcess: svc.process, Logger: a.logger}
	statusHandler := &tools.StatusHandler{
		DoStatus:  svc.status,
		IndexPath: a.cfg.Index.Path,
		StartTime: startTime,
		Logger:    a.logger,
	}

	mcpServer := server.Setup(validateHandler, fixHandler, statusHandler)

	a.logger.Info("MCP server starting on stdio", "index", a.cfg.Index.Path, "entries", store.Len())
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}
