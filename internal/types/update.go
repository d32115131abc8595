package types

import "strings"

// StudentUpdate is a partial update. A nil field means "leave unchanged".
// The id and the course list are not part of it: the id is the key and
// courses change only through AddCourse/RemoveCourse.
type StudentUpdate struct {
	Name       *string  `json:"name,omitempty"`
	Age        *int     `json:"age,omitempty"`
	Grade      *string  `json:"grade,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Attendance *float64 `json:"attendance,omitempty"`
}

// IsEmpty reports whether the update names no fields at all.
func (u StudentUpdate) IsEmpty() bool {
	return u.Name == nil && u.Age == nil && u.Grade == nil &&
		u.Email == nil && u.Phone == nil && u.Attendance == nil
}

// Apply builds the state s would have after the update and validates it as
// a whole. s itself is never modified; the returned student is a fresh,
// normalised copy that shares s's id and course list.
func (u StudentUpdate) Apply(s *Student) (*Student, error) {
	name, age, grade := s.Name, s.Age, s.Grade
	email, phone, attendance := s.Email, s.Phone, s.Attendance

	if u.Name != nil {
		name = *u.Name
	}
	if u.Age != nil {
		age = *u.Age
	}
	if u.Grade != nil {
		grade = *u.Grade
	}
	if u.Email != nil {
		email = *u.Email
	}
	if u.Phone != nil {
		phone = *u.Phone
	}
	if u.Attendance != nil {
		attendance = *u.Attendance
	}

	next, err := NewStudent(s.ID, name, age, grade, email, phone, attendance)
	if err != nil {
		return nil, err
	}
	next.Courses = s.Courses
	return next, nil
}

// SearchFilter selects students. Every non-nil field must match.
type SearchFilter struct {
	// Name matches as a case-insensitive substring.
	Name  *string
	Grade *string
	Age   *int
}

// IsEmpty reports whether no criteria are set, in which case every student
// matches.
func (f SearchFilter) IsEmpty() bool {
	return f.Name == nil && f.Grade == nil && f.Age == nil
}

// Matches reports whether s satisfies all of the filter's criteria.
func (f SearchFilter) Matches(s *Student) bool {
	if f.Name != nil && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.Grade != nil && s.Grade != *f.Grade {
		return false
	}
	if f.Age != nil && s.Age != *f.Age {
		return false
	}
	return true
}
