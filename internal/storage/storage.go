// Package storage defines the contracts between the student store, the
// persistence backends that flush it to disk, and the handlers that drive
// both.
//
// Handlers depend only on these interfaces, so swapping the JSON file for
// SQLite is a one-line change in main.go, and tests can use the in-memory
// store directly.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Sentinel errors. Check them with errors.Is.
var (
	// ErrDuplicateID is returned by Add when the id is already a key.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotFound is returned when an operation names an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrMalformedFile means the persisted data could not be parsed at all.
	// Nothing is loaded when it is returned.
	ErrMalformedFile = errors.New("malformed data file")

	// ErrPartialRecord marks a single persisted entry that was skipped on
	// load. It is only ever logged, never returned from Load.
	ErrPartialRecord = errors.New("invalid stored record")
)

// Storage is the in-memory student collection.
type Storage interface {
	// Add stores s under s.ID. It does not validate s; build it with
	// types.NewStudent. Returns ErrDuplicateID if the id is taken.
	Add(s *types.Student) error

	// Update validates the full state produced by applying u and, only if
	// it is valid, applies the named fields in place. Returns ErrNotFound
	// or a *types.ValidationError; the stored record is unchanged on error.
	Update(id string, u types.StudentUpdate) error

	// Delete removes and returns the student, or ErrNotFound.
	Delete(id string) (*types.Student, error)

	// Get returns the live student, or ErrNotFound.
	Get(id string) (*types.Student, error)

	// List returns every student in store order. The slice is a fresh
	// snapshot; the students in it are the live records.
	List() []*types.Student

	// Search returns, in store order, the students matching every set
	// criterion of f. An empty filter behaves like List.
	Search(f types.SearchFilter) []*types.Student

	// Len reports how many students are stored.
	Len() int
}

// Persister flushes a Storage to durable storage and reads it back.
type Persister interface {
	// Load populates store from the backend. A missing data source is not
	// an error. Invalid entries are skipped and logged; ErrMalformedFile
	// means nothing was loaded.
	Load(store Storage) error

	// Save overwrites the backend with the full contents of store.
	Save(store Storage) error

	// Close releases any resources held by the backend.
	Close() error
}

// Success messages reported by Outcome.
const (
	MsgAdded   = "added"
	MsgUpdated = "updated"
	MsgDeleted = "deleted"
)

// Outcome turns the result of a store mutation into the (success, message)
// pair shown to the user. success is the message used when err is nil.
func Outcome(success string, err error) (bool, string) {
	if err == nil {
		return true, success
	}
	if errors.Is(err, types.ErrValidation) {
		return false, "validation error: " + err.Error()
	}
	return false, err.Error()
}
