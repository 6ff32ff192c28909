package test

import (
	"log"

	"github.com/rs/zerolog"

	"userapp/internal/adapter/database/sqlite"
)

// InitTestDB opens a migrated in-memory SQLite store.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(sqlite.Config{
		Path:        sqlite.MemoryPath,
		SQLLogLevel: zerolog.Disabled,
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

func CountRows(db *sqlite.DB, table string) int {
	var count int

	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		log.Fatal(err)
	}

	return count
}
