package sqlite

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
)

func openTemp(t *testing.T, log *slog.Logger) *SQLite {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "students.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	db := openTemp(t, nil)

	src := memory.New()
	b, err := types.NewStudent("S2", "Bea Adams", 22, "C", "BEA@adams.io", "03001234567", 61.5)
	require.NoError(t, err)
	b.AddCourse("Chemistry")
	a, err := types.NewStudent("S1", "Al Brown", 19, "A", "al@brown.io", "+03001234567", types.DefaultAttendance)
	require.NoError(t, err)
	require.NoError(t, src.Add(b))
	require.NoError(t, src.Add(a))

	require.NoError(t, db.Save(src))

	dst := memory.New()
	require.NoError(t, db.Load(dst))

	got := dst.List()
	require.Len(t, got, 2)
	assert.Equal(t, b.ToDict(), got[0].ToDict())
	assert.Equal(t, a.ToDict(), got[1].ToDict())
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	db := openTemp(t, nil)

	st := memory.New()
	s1, err := types.NewStudent("S1", "Al Brown", 19, "A", "al@brown.io", "03001234567", 90)
	require.NoError(t, err)
	s2, err := types.NewStudent("S2", "Bea Adams", 22, "C", "bea@adams.io", "03001234567", 90)
	require.NoError(t, err)
	require.NoError(t, st.Add(s1))
	require.NoError(t, st.Add(s2))
	require.NoError(t, db.Save(st))

	_, err = st.Delete("S1")
	require.NoError(t, err)
	require.NoError(t, db.Save(st))

	var count int
	require.NoError(t, db.Db.QueryRow("SELECT COUNT(*) FROM students").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLoad_SkipsInvalidRows(t *testing.T) {
	var logs bytes.Buffer
	db := openTemp(t, slog.New(slog.NewTextHandler(&logs, nil)))

	_, err := db.Db.Exec(`
		INSERT INTO students (student_id, position, name, age, grade, email, phone, courses, attendance)
		VALUES
			('S1', 0, 'Good Row', 20, 'A', 'g@row.com', '03001234567', '["Art"]', 99),
			('S2', 1, 'Old Row', 500, 'A', 'o@row.com', '03001234567', '[]', 99),
			('S3', 2, 'Bad Courses', 20, 'A', 'b@row.com', '03001234567', 'nope', 99)
	`)
	require.NoError(t, err)

	st := memory.New()
	require.NoError(t, db.Load(st))

	require.Equal(t, 1, st.Len())
	s, err := st.Get("S1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Art"}, s.Courses)

	out := logs.String()
	assert.Contains(t, out, "key=S2")
	assert.Contains(t, out, "key=S3")
	assert.Contains(t, out, "skipped=2")
}

func TestLoad_EmptyDatabase(t *testing.T) {
	db := openTemp(t, nil)
	st := memory.New()
	require.NoError(t, db.Load(st))
	assert.Zero(t, st.Len())
}
