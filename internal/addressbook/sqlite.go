package addressbook

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/smileynet/contactos/internal/contact"
)

// Verify SQLiteSource satisfies Source at compile time.
var _ Source = (*SQLiteSource)(nil)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS phones (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	display_name TEXT,
	number       TEXT
)`
	loadSQL   = `SELECT display_name, number FROM phones ORDER BY display_name COLLATE NOCASE ASC, display_name ASC, id ASC`
	insertSQL = `INSERT INTO phones (display_name, number) VALUES (?, ?)`
	clearSQL  = `DELETE FROM phones`
)

// SQLiteSource reads contacts from a SQLite database holding a phones table
// of (display_name, number) rows.
type SQLiteSource struct {
	path string
}

// NewSQLiteSource creates a SQLiteSource for the database at path.
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

// Name returns "sqlite".
func (s *SQLiteSource) Name() string { return "sqlite" }

// Load returns every phones row ordered by display_name, ignoring ASCII
// case. Names equal under folding keep byte order, then insertion order. NULL columns
// become empty strings. A missing database file is an error; it is never
// created by Load.
func (s *SQLiteSource) Load(ctx context.Context) ([]contact.Contact, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, s.wrap(err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, loadSQL)
	if err != nil {
		return nil, s.wrap(fmt.Errorf("querying phones: %w", err))
	}
	defer func() { _ = rows.Close() }()

	contacts := []contact.Contact{}
	for rows.Next() {
		var name, number sql.NullString
		if err := rows.Scan(&name, &number); err != nil {
			return nil, s.wrap(fmt.Errorf("scanning row: %w", err))
		}
		contacts = append(contacts, contact.Contact{Name: name.String, PhoneNumber: number.String})
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err)
	}
	return contacts, nil
}

// Init creates the database file and phones table if they do not exist.
func (s *SQLiteSource) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return s.wrap(err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return s.wrap(fmt.Errorf("creating schema: %w", err))
	}
	return nil
}

// Insert appends contacts in a single transaction. Empty names and numbers
// are stored as NULL.
func (s *SQLiteSource) Insert(ctx context.Context, contacts ...contact.Contact) error {
	return s.write(ctx, false, contacts)
}

// Replace deletes every existing row and inserts contacts, all in one
// transaction.
func (s *SQLiteSource) Replace(ctx context.Context, contacts ...contact.Contact) error {
	return s.write(ctx, true, contacts)
}

func (s *SQLiteSource) write(ctx context.Context, replace bool, contacts []contact.Contact) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return s.wrap(err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap(err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, clearSQL); err != nil {
			return s.wrap(fmt.Errorf("clearing phones: %w", err))
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return s.wrap(fmt.Errorf("preparing insert: %w", err))
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range contacts {
		if _, err := stmt.ExecContext(ctx, nullable(c.Name), nullable(c.PhoneNumber)); err != nil {
			return s.wrap(fmt.Errorf("inserting %q: %w", c.Name, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *SQLiteSource) wrap(err error) error {
	return &SourceError{Source: s.path, Err: err}
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
