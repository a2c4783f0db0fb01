// Package sqlite provides a store.RunStore backed by SQLite through
// github.com/mattn/go-sqlite3. Messages are stored as a JSON column.
//
//	runs, err := sqlite.NewSqliteRunStore(sqlite.SqliteOptions{Path: "runs.db"})
//	if err != nil {
//		return err
//	}
//	defer runs.Close()
package sqlite
