package store

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN for the waybill database.
func DSN(host string, port int, database string) string {
	return fmt.Sprintf("root@tcp(%s:%d)/%s?parseTime=true", host, port, database)
}

// ConnectSQLite opens a GORM connection to a SQLite database file.
// Use ":memory:" for an in-memory database.
func ConnectSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect sqlite %s: %w", path, err)
	}
	return db, nil
}

// ConnectMySQL opens a GORM connection to a MySQL-compatible server.
func ConnectMySQL(host string, port int, database string) (*gorm.DB, error) {
	dsn := DSN(host, port, database)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect to %s:%d/%s: %w", host, port, database, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the documents table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return fmt.Errorf("store: auto-migrate: %w", err)
	}
	return nil
}
