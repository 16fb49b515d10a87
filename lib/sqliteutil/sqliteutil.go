package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens a local sqlite file (or :memory:) or a remote libsql
// database depending on the shape of `target`, then applies the schema.
func OpenDB(schema string, target string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch {
	case strings.HasPrefix(target, "libsql://"),
		strings.HasPrefix(target, "http://"),
		strings.HasPrefix(target, "https://"):
		db, err = sql.Open("libsql", target)
	case target == ":memory:":
		db, err = sql.Open("sqlite", target)
	default:
		err = os.MkdirAll(filepath.Dir(target), 0755)
		if err != nil {
			return nil, err
		}
		db, err = sql.Open("sqlite", fmt.Sprintf("file:%s", target))
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}
	return db, nil
}
