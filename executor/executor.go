package executor

import (
	"fmt"
	"time"
)

// failf folds an error into a failure Result; the core never logs.
func failf(start time.Time, format string, args ...any) Result {
	return Result{
		Success: false,
		Message: fmt.Sprintf(format, args...),
		Elapsed: time.Since(start),
	}
}

func okf(start time.Time, affected int, format string, args ...any) Result {
	return Result{
		Success:      true,
		Message:      fmt.Sprintf(format, args...),
		RowsAffected: affected,
		Elapsed:      time.Since(start),
	}
}

// ReopenIndexes recreates an empty tree for every index the catalog
// already describes, after a catalog load. Entries are not rebuilt from
// previously stored rows: pages written by earlier sessions are not
// re-tracked.
func (e *Executor) ReopenIndexes() error {
	for _, table := range e.catalog.TableNames() {
		for _, idx := range e.catalog.TableIndexes(table) {
			if err := e.indexes.Create(idx.Name); err != nil {
				return fmt.Errorf("reopen index %q: %w", idx.Name, err)
			}
		}
	}
	return nil
}
