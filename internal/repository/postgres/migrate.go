package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ApplyMigrations применяет все *.up.sql из fsys в лексикографическом порядке.
// Миграции написаны идемпотентно, поэтому повторный запуск безопасен.
func (db *DB) ApplyMigrations(ctx context.Context, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var upFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, file := range upFiles {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		db.logger.Info("Applied migration", zap.String("file", file))
	}

	return nil
}
