package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id         INTEGER PRIMARY KEY AUTOINCREMENT,
	display_name    TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	role            TEXT NOT NULL DEFAULT 'USER'
);

CREATE TABLE IF NOT EXISTS challenges (
	challenge_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL,
	user_id      INTEGER NOT NULL REFERENCES users(user_id)
);

CREATE TABLE IF NOT EXISTS testcases (
	testcase_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	challenge_id    INTEGER NOT NULL REFERENCES challenges(challenge_id) ON DELETE CASCADE,
	input           TEXT NOT NULL,
	expected_output TEXT NOT NULL,
	limit_memory    INTEGER NOT NULL,
	limit_time_ms   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	submission_id INTEGER PRIMARY KEY AUTOINCREMENT,
	challenge_id  INTEGER NOT NULL REFERENCES challenges(challenge_id) ON DELETE CASCADE,
	user_id       INTEGER NOT NULL REFERENCES users(user_id),
	language      TEXT NOT NULL,
	source_code   TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'PENDING'
);

CREATE TABLE IF NOT EXISTS submission_testcases (
	submission_testcase_id INTEGER PRIMARY KEY AUTOINCREMENT,
	submission_id          INTEGER NOT NULL REFERENCES submissions(submission_id) ON DELETE CASCADE,
	challenge_testcase_id  INTEGER NOT NULL,
	status                 TEXT NOT NULL DEFAULT 'PENDING',
	output                 TEXT NOT NULL DEFAULT '',
	note                   TEXT NOT NULL DEFAULT ''
);
`

// Open opens a database at path and ensures the schema exists. Tests point
// it at a temp file or ":memory:".
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

func Connect(path string) {
	var err error
	DB, err = Open(path)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	fmt.Println("Successfully opened SQLite database at", path)
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
