// Package memory provides the in-memory implementation of
// storage.Storage: a map keyed by student id plus a slice that remembers
// the order keys were first added.
//
// A Store is not safe for concurrent use. The process has a single
// logical actor; the HTTP server serialises requests before they reach
// the store.
package memory

import (
	"slices"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Store is the concrete storage.Storage.
type Store struct {
	students map[string]*types.Student
	order    []string
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		students: make(map[string]*types.Student),
		order:    make([]string, 0),
	}
}

func (s *Store) Add(student *types.Student) error {
	if _, ok := s.students[student.ID]; ok {
		return storage.ErrDuplicateID
	}
	s.students[student.ID] = student
	s.order = append(s.order, student.ID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update validates first and mutates second, so a rejected update leaves
// the record exactly as it was.
//
// Only the fields named in u are copied across, and they are copied from
// the validated candidate so the stored values are normalised (trimmed,
// lower-cased email) the same way construction normalises them.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) Update(id string, u types.StudentUpdate) error {
	current, ok := s.students[id]
	if !ok {
		return storage.ErrNotFound
	}

	next, err := u.Apply(current)
	if err != nil {
		return err
	}

	if u.Name != nil {
		current.Name = next.Name
	}
	if u.Age != nil {
		current.Age = next.Age
	}
	if u.Grade != nil {
		current.Grade = next.Grade
	}
	if u.Email != nil {
		current.Email = next.Email
	}
	if u.Phone != nil {
		current.Phone = next.Phone
	}
	if u.Attendance != nil {
		current.Attendance = next.Attendance
	}
	return nil
}

func (s *Store) Delete(id string) (*types.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.students, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return student, nil
}

func (s *Store) Get(id string) (*types.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return student, nil
}

func (s *Store) List() []*types.Student {
	out := make([]*types.Student, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.students[id])
	}
	return out
}

// Search is a linear scan in store order.
func (s *Store) Search(f types.SearchFilter) []*types.Student {
	if f.IsEmpty() {
		return s.List()
	}

	out := make([]*types.Student, 0)
	for _, id := range s.order {
		if student := s.students[id]; f.Matches(student) {
			out = append(out, student)
		}
	}
	return out
}

func (s *Store) Len() int {
	return len(s.order)
}
