// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// To inject the store and the persister, each exported function is a
// factory that is called once at startup and returns the handler:
//
//	router.HandleFunc("POST /api/students", student.New(store, persister))
//
// Every handler that changes the store calls persister.Save before it
// reports success; a change is not durable until that returns nil.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

var validate = validator.New()

var errEmptyBody = errors.New("request body is empty")

// createRequest is the body of POST /api/students. The validate tags only
// check presence; the field rules themselves live in types.NewStudent.
type createRequest struct {
	ID         string   `json:"student_id" validate:"required"`
	Name       string   `json:"name" validate:"required"`
	Age        int      `json:"age" validate:"required"`
	Grade      string   `json:"grade" validate:"required"`
	Email      string   `json:"email" validate:"required"`
	Phone      string   `json:"phone" validate:"required"`
	Attendance *float64 `json:"attendance"`
	Courses    []string `json:"courses"`
}

type courseRequest struct {
	Course string `json:"course" validate:"required"`
}

type attendanceRequest struct {
	Attendance *float64 `json:"attendance" validate:"required"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "student_id": "S001", "name": "John Doe", "age": 20, "grade": "A",
//	  "email": "john@test.com", "phone": "03001234567", "attendance": 95 }
//
// attendance defaults to 100 when omitted; courses is optional.
//
// Responses:
//
//	201 Created      — { "status": "ok", "message": "added", "student_id": "S001" }
//	400 Bad Request  — empty/malformed body or a field failed validation
//	409 Conflict     — the id already exists
//	500 Internal     — the store could not be saved
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage, persister storage.Persister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var req createRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		attendance := types.DefaultAttendance
		if req.Attendance != nil {
			attendance = *req.Attendance
		}

		student, err := types.NewStudent(req.ID, req.Name, req.Age, req.Grade, req.Email, req.Phone, attendance)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		for _, c := range req.Courses {
			student.AddCourse(c)
		}

		err = store.Add(student)
		ok, msg := storage.Outcome(storage.MsgAdded, err)
		if !ok {
			writeStoreError(w, err)
			return
		}

		if !persist(w, store, persister) {
			return
		}

		slog.Info("student created", slog.String("id", student.ID))
		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"status":     response.StatusOK,
			"message":    msg,
			"student_id": student.ID,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
//	200 OK        — the student record
//	404 Not Found — unknown id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		student, err := store.Get(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student.ToDict())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// Optional query parameters narrow the result (all must match):
//
//	name  — case-insensitive substring of the name
//	grade — exact grade
//	age   — exact age
//
// Returns a JSON array in store order; [] (not null) when empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		var students []*types.Student
		if filter.IsEmpty() {
			slog.Info("listing all students")
			students = store.List()
		} else {
			slog.Info("searching students", slog.String("query", r.URL.RawQuery))
			students = store.Search(filter)
		}

		records := make([]types.Record, 0, len(students))
		for _, s := range students {
			records = append(records, s.ToDict())
		}
		response.WriteJSON(w, http.StatusOK, records)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /api/students/{id}
//
// The body names only the fields to change, any of:
//
//	{ "name", "age", "grade", "email", "phone", "attendance" }
//
// student_id and courses are rejected as unknown fields. The merged record
// is validated as a whole; if any field fails, nothing is changed.
//
//	200 OK           — the updated record
//	400 Bad Request  — empty update, unknown field, or validation failure
//	404 Not Found    — unknown id
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage, persister storage.Persister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		var upd types.StudentUpdate
		if err := decodeBody(r, &upd); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if upd.IsEmpty() {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("no fields to update")))
			return
		}

		if err := store.Update(id, upd); err != nil {
			writeStoreError(w, err)
			return
		}

		if !persist(w, store, persister) {
			return
		}

		student, _ := store.Get(id)
		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, student.ToDict())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
//	200 OK        — { "status": "ok", "message": "deleted" }
//	404 Not Found — unknown id
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage, persister storage.Persister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		_, err := store.Delete(id)
		ok, msg := storage.Outcome(storage.MsgDeleted, err)
		if !ok {
			writeStoreError(w, err)
			return
		}

		if !persist(w, store, persister) {
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.OK(msg))
	}
}

// AddCourse handles POST /api/students/{id}/courses with body
// { "course": "Math" }. Adding a course the student already has is a no-op.
func AddCourse(store storage.Storage, persister storage.Persister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req courseRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		student, err := store.Get(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		student.AddCourse(req.Course)

		if !persist(w, store, persister) {
			return
		}

		slog.Info("course added", slog.String("id", id), slog.String("course", req.Course))
		response.WriteJSON(w, http.StatusOK, student.ToDict())
	}
}

// RemoveCourse handles DELETE /api/students/{id}/courses/{course}.
// Removing a course the student does not have is a no-op.
func RemoveCourse(store storage.Storage, persister storage.Persister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		course := r.PathValue("course")

		student, err := store.Get(id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		student.RemoveCourse(course)

		if !persist(w, store, persister) {
			return
		}

		slog.Info("course removed", slog.String("id", id), slog.String("course", course))
		response.WriteJSON(w, http.StatusOK, student.ToDict())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SetAttendance handles POST /api/students/attendance
//
// Sets every student's attendance to the same value:
//
//	{ "attendance": 100 }
//
// The value is range-checked before any student is touched, so an invalid
// value changes nobody.
// ─────────────────────────────────────────────────────────────────────────────
func SetAttendance(store storage.Storage, persister storage.Persister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attendanceRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		students := store.List()
		upd := types.StudentUpdate{Attendance: req.Attendance}
		for _, s := range students {
			if _, err := upd.Apply(s); err != nil {
				writeStoreError(w, err)
				return
			}
		}

		for _, s := range students {
			if err := store.Update(s.ID, upd); err != nil {
				writeStoreError(w, err)
				return
			}
		}

		if !persist(w, store, persister) {
			return
		}

		slog.Info("attendance set for all students",
			slog.Float64("attendance", *req.Attendance),
			slog.Int("count", len(students)))
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  response.StatusOK,
			"message": storage.MsgUpdated,
			"count":   len(students),
		})
	}
}

// Stats handles GET /api/students/stats and returns types.Summary.
func Stats(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, types.Summarize(store.List()))
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

// decodeBody decodes a JSON body, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// decodeAndValidate decodes the body into v and checks its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeBody(r, v); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return false
	}
	return true
}

// persist saves the store. On failure it logs, writes a 500 and returns
// false; the in-memory change stays applied and is retried by the next
// successful save.
func persist(w http.ResponseWriter, store storage.Storage, persister storage.Persister) bool {
	if err := persister.Save(store); err != nil {
		slog.Error("failed to save students", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return false
	}
	return true
}

// writeStoreError maps store and validation errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	_, msg := storage.Outcome("", err)

	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		response.WriteJSON(w, http.StatusBadRequest, response.FieldError(verr.Field, msg))
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	case errors.Is(err, storage.ErrDuplicateID):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
	default:
		slog.Error("unexpected store error", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}

func parseFilter(r *http.Request) (types.SearchFilter, error) {
	q := r.URL.Query()
	var f types.SearchFilter

	if q.Has("name") {
		name := q.Get("name")
		f.Name = &name
	}
	if q.Has("grade") {
		grade := q.Get("grade")
		f.Grade = &grade
	}
	if q.Has("age") {
		age, err := strconv.Atoi(q.Get("age"))
		if err != nil {
			return f, errors.New("invalid age: must be an integer")
		}
		f.Age = &age
	}
	return f, nil
}
