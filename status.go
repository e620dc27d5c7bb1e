package main

import (
	"fmt"
	"path/filepath"

	"github.com/lexandro/eolguard/tools"
)

// runStatus prints how the index compares with the files on disk,
// optionally only for entries under prefix.
func (a *app) runStatus(prefix string) error {
	if prefix != "" {
		absPrefix, err := filepath.Abs(prefix)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", prefix, err)
		}
		prefix = absPrefix
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	report := store.Verify(prefix)
	a.logger.Info("status verification complete",
		"entries", report.Total,
		"invalid", report.Invalid,
		"stale", report.Stale,
		"modified", report.Modified,
		"duration", report.Duration,
	)

	fmt.Fprint(a.stdout, tools.FormatStatusReport(a.cfg.Index.Path, prefix, report))
	return nil
}
