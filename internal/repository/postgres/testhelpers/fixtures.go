package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// FixturesDir - каталог фикстур относительно пакета с тестами
const FixturesDir = "testdata/fixtures"

// LoadFixtures выполняет SQL-фикстуры из FixturesDir одной транзакцией
func LoadFixtures(t *testing.T, db *sqlx.DB, files ...string) {
	t.Helper()

	tx, err := db.Beginx()
	if err != nil {
		t.Fatalf("begin fixtures tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(FixturesDir, file))
		if err != nil {
			t.Fatalf("read fixture %s: %v", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			t.Fatalf("load fixture %s: %v", file, err)
		}
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit fixtures: %v", err)
	}
}
