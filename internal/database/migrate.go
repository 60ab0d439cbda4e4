package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/safar/shop-backoffice/internal/log"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate applies every embedded migration for the given direction. Up runs
// files in name order, down in reverse. Each file runs in its own transaction.
func Migrate(ctx context.Context, db *sql.DB, direction string) (int, error) {
	if direction != MigrateUp && direction != MigrateDown {
		return 0, fmt.Errorf("direction must be %q or %q, got %q", MigrateUp, MigrateDown, direction)
	}

	files, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("read migration directory: %w", err)
	}

	suffix := fmt.Sprintf(".%s.sql", direction)
	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), suffix) {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)
	if direction == MigrateDown {
		for i, j := 0, len(migrationFiles)-1; i < j; i, j = i+1, j-1 {
			migrationFiles[i], migrationFiles[j] = migrationFiles[j], migrationFiles[i]
		}
	}

	for _, filename := range migrationFiles {
		content, err := migrationFS.ReadFile("migrations/" + filename)
		if err != nil {
			return 0, fmt.Errorf("read migration file %s: %w", filename, err)
		}

		log.L.Info("running migration", zap.String("file", filename))
		err = WithTransaction(ctx, db, DefaultTxOptions(), func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, string(content))
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("execute migration %s: %w", filename, err)
		}
	}

	return len(migrationFiles), nil
}
