package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens a fresh in-memory SQLite database. Each call gets
// its own named database so parallel tests never observe each other's rows,
// while connections from the same pool still share one store.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:til_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	return sql.Open("sqlite3", dsn)
}
