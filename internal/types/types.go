// Package types holds the student record and the small value types that
// travel with it (partial updates, search filters, summaries). Storage,
// persistence and HTTP code all import types without depending on each
// other.
package types

import (
	"slices"
	"strings"
)

// DefaultAttendance is used when a record is created or loaded without an
// attendance value.
const DefaultAttendance = 100.0

// Grades lists every accepted grade, in display order.
var Grades = []string{"A", "B", "C", "D", "E", "F"}

// Student is one validated student record.
//
// The json tags are the keys of the persisted file, so renaming them
// breaks every existing data file.
//
// Fields are exported so handlers can render them, but all changes are
// expected to go through NewStudent and the store's Update, which keep the
// record valid.
type Student struct {
	ID         string   `json:"student_id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Grade      string   `json:"grade"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Courses    []string `json:"courses"`
	Attendance float64  `json:"attendance"`
}

// Record is the plain, serialisable form of a Student. Field order here is
// the order fields appear in the data file.
type Record struct {
	ID         string   `json:"student_id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Grade      string   `json:"grade"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Courses    []string `json:"courses"`
	Attendance float64  `json:"attendance"`
}

// ─────────────────────────────────────────────────────────────────────────────
// NewStudent validates every field and returns a ready-to-store record.
//
// Fields are checked in a fixed order (id, name, age, grade, email, phone,
// attendance) and the first failure is returned as a *ValidationError.
// Pass DefaultAttendance when the caller has no attendance value.
//
// Normalisation applied on success:
//
//	id, name, phone — surrounding whitespace trimmed
//	email           — trimmed and lower-cased
//	courses         — empty, never nil
//
// ─────────────────────────────────────────────────────────────────────────────
func NewStudent(id, name string, age int, grade, email, phone string, attendance float64) (*Student, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	if err := validateFields(id, name, age, grade, email, phone, attendance); err != nil {
		return nil, err
	}

	return &Student{
		ID:         id,
		Name:       name,
		Age:        age,
		Grade:      grade,
		Email:      strings.ToLower(email),
		Phone:      phone,
		Courses:    make([]string, 0),
		Attendance: attendance,
	}, nil
}

// AddCourse appends course unless an identical entry is already present.
// Matching is case-sensitive and the course name itself is not validated.
func (s *Student) AddCourse(course string) {
	if s.HasCourse(course) {
		return
	}
	s.Courses = append(s.Courses, course)
}

// RemoveCourse drops the first exact match of course, if any.
func (s *Student) RemoveCourse(course string) {
	i := slices.Index(s.Courses, course)
	if i < 0 {
		return
	}
	s.Courses = slices.Delete(s.Courses, i, i+1)
}

// HasCourse reports whether course is on the student's list.
func (s *Student) HasCourse(course string) bool {
	return slices.Contains(s.Courses, course)
}

// ToDict returns every field of the student as a Record. The course list is
// copied so the caller can't reach the live slice through it.
func (s *Student) ToDict() Record {
	courses := make([]string, len(s.Courses))
	copy(courses, s.Courses)

	return Record{
		ID:         s.ID,
		Name:       s.Name,
		Age:        s.Age,
		Grade:      s.Grade,
		Email:      s.Email,
		Phone:      s.Phone,
		Courses:    courses,
		Attendance: s.Attendance,
	}
}

// FromRecord rebuilds a student from its persisted form, running the same
// validation as NewStudent. Duplicate courses are dropped, keeping the
// first occurrence.
func FromRecord(r Record) (*Student, error) {
	s, err := NewStudent(r.ID, r.Name, r.Age, r.Grade, r.Email, r.Phone, r.Attendance)
	if err != nil {
		return nil, err
	}
	for _, c := range r.Courses {
		s.AddCourse(c)
	}
	return s, nil
}
