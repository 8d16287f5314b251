package db

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
// An empty path uses the default location under the user data directory.
func New(path string) (*DB, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	d := &DB{db}
	if err := d.migrateTitleIndex(); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.migratePosition(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// DefaultPath returns the path to the database file
func DefaultPath() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "taskman")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "taskman.db"), nil
}

// migrateTitleIndex adds the title index to databases created before it
// existed. Existing rows are untouched.
func (db *DB) migrateTitleIndex() error {
	rows, err := db.Query("PRAGMA index_list(tasks)")
	if err != nil {
		return err
	}
	defer rows.Close()

	hasIndex := false
	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return err
		}
		if name == "idx_tasks_title" {
			hasIndex = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasIndex {
		_, err := db.Exec("CREATE INDEX idx_tasks_title ON tasks(title)")
		return err
	}
	return nil
}

// migratePosition adds the position column to databases created before
// ordering was durable, backfilling from insertion order.
func (db *DB) migratePosition() error {
	rows, err := db.Query("PRAGMA table_info(tasks)")
	if err != nil {
		return err
	}
	defer rows.Close()

	hasPosition := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "position" {
			hasPosition = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasPosition {
		if _, err := db.Exec("ALTER TABLE tasks ADD COLUMN position INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
		_, err := db.Exec("UPDATE tasks SET position = rowid")
		return err
	}
	return nil
}

// GetPreference retrieves a preference value by key
func (db *DB) GetPreference(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetPreference sets a preference value
func (db *DB) SetPreference(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetTheme returns the persisted dark-mode flag. found is false when no
// theme preference has been stored yet.
func (db *DB) GetTheme() (dark, found bool, err error) {
	value, err := db.GetPreference("theme")
	if err != nil || value == "" {
		return false, false, err
	}
	dark, err = strconv.ParseBool(value)
	if err != nil {
		return false, false, err
	}
	return dark, true, nil
}

// SetTheme persists the dark-mode flag
func (db *DB) SetTheme(dark bool) error {
	return db.SetPreference("theme", strconv.FormatBool(dark))
}
