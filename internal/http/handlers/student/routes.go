package student

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/storage"
)

// Register adds every student route to router.
//
// Route table:
//
//	POST   /api/students                        → create a student
//	GET    /api/students                        → list, or search with ?name=&grade=&age=
//	GET    /api/students/stats                  → dashboard summary
//	POST   /api/students/attendance             → set attendance for everyone
//	GET    /api/students/{id}                   → get one student
//	PATCH  /api/students/{id}                   → partial update
//	DELETE /api/students/{id}                   → delete
//	POST   /api/students/{id}/courses           → add a course
//	DELETE /api/students/{id}/courses/{course}  → remove a course
//
// ServeMux prefers the literal "stats" segment over {id}, so a student whose
// id is literally "stats" cannot be fetched with GET.
func Register(router *http.ServeMux, store storage.Storage, persister storage.Persister) {
	router.HandleFunc("POST /api/students", New(store, persister))
	router.HandleFunc("GET /api/students", GetList(store))
	router.HandleFunc("GET /api/students/stats", Stats(store))
	router.HandleFunc("POST /api/students/attendance", SetAttendance(store, persister))
	router.HandleFunc("GET /api/students/{id}", GetByID(store))
	router.HandleFunc("PATCH /api/students/{id}", Update(store, persister))
	router.HandleFunc("DELETE /api/students/{id}", Delete(store, persister))
	router.HandleFunc("POST /api/students/{id}/courses", AddCourse(store, persister))
	router.HandleFunc("DELETE /api/students/{id}/courses/{course}", RemoveCourse(store, persister))
}
