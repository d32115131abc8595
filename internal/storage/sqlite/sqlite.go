// Package sqlite provides a SQLite-backed storage.Persister using Go's
// standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite keeps everything in a single file with no server process, so it
// is a drop-in alternative to the JSON file when the data set outgrows a
// hand-editable document. The store itself stays in memory either way;
// SQLite only holds the last saved snapshot.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete storage.Persister backed by a SQLite file.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db  *sql.DB
	log *slog.Logger
}

var _ storage.Persister = (*SQLite)(nil)

// New opens the SQLite database at path and creates the students table if
// it does not already exist. A nil logger falls back to slog.Default().
func New(path string, log *slog.Logger) (*SQLite, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   position — store order; Load reads rows back sorted by it
	//   courses  — JSON array of course names
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			student_id TEXT    PRIMARY KEY,
			position   INTEGER NOT NULL,
			name       TEXT    NOT NULL,
			age        INTEGER NOT NULL,
			grade      TEXT    NOT NULL,
			email      TEXT    NOT NULL,
			phone      TEXT    NOT NULL,
			courses    TEXT    NOT NULL DEFAULT '[]',
			attendance REAL    NOT NULL DEFAULT 100.0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{
		Db:  db,
		log: log.With(slog.String("component", "sqlite"), slog.String("path", path)),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save replaces every row with the current contents of store.
//
// Everything runs in one transaction: either the whole snapshot lands or
// the previous one is kept. Values are bound through ? placeholders, never
// concatenated into the SQL.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Save(store storage.Storage) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite.Save: begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM students"); err != nil {
		return fmt.Errorf("sqlite.Save: clear: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO students
			(student_id, position, name, age, grade, email, phone, courses, attendance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite.Save: prepare: %w", err)
	}
	defer stmt.Close()

	students := store.List()
	for i, student := range students {
		rec := student.ToDict()

		courses, err := json.Marshal(rec.Courses)
		if err != nil {
			return fmt.Errorf("sqlite.Save: encode courses for %s: %w", rec.ID, err)
		}

		// Argument order matches the column list above.
		_, err = stmt.Exec(rec.ID, i, rec.Name, rec.Age, rec.Grade,
			rec.Email, rec.Phone, string(courses), rec.Attendance)
		if err != nil {
			return fmt.Errorf("sqlite.Save: insert %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Save: commit: %w", err)
	}

	s.log.Debug("students saved", slog.Int("count", len(students)))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Load reads every row in position order and adds it to store.
//
// Rows are rebuilt through types.FromRecord, so a row edited by hand into an
// invalid state is skipped with a warning exactly like a bad JSON entry.
// A query or scan failure aborts the load before anything is added.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Load(store storage.Storage) error {
	rows, err := s.Db.Query(`
		SELECT student_id, name, age, grade, email, phone, courses, attendance
		FROM students
		ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("sqlite.Load: query: %w", err)
	}
	defer rows.Close()

	type row struct {
		rec     types.Record
		courses string
	}
	var all []row

	for rows.Next() {
		var r row
		if err := rows.Scan(
			&r.rec.ID,
			&r.rec.Name,
			&r.rec.Age,
			&r.rec.Grade,
			&r.rec.Email,
			&r.rec.Phone,
			&r.courses,
			&r.rec.Attendance,
		); err != nil {
			return fmt.Errorf("sqlite.Load: scan row: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite.Load: rows iteration: %w", err)
	}

	loaded := 0
	for _, r := range all {
		err := json.Unmarshal([]byte(r.courses), &r.rec.Courses)
		var student *types.Student
		if err == nil {
			student, err = types.FromRecord(r.rec)
		}
		if err == nil {
			err = store.Add(student)
		}
		if err != nil {
			s.log.Warn("skipping invalid student record",
				slog.String("key", r.rec.ID),
				slog.String("error", fmt.Errorf("%w: %v", storage.ErrPartialRecord, err).Error()))
			continue
		}
		loaded++
	}

	s.log.Info("students loaded",
		slog.Int("loaded", loaded),
		slog.Int("skipped", len(all)-loaded))
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
