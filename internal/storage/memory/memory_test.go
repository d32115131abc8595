package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

func ptr[T any](v T) *T { return &v }

func mustStudent(t *testing.T, id, name string, age int, grade string) *types.Student {
	t.Helper()
	s, err := types.NewStudent(id, name, age, grade, id+"@school.edu", "03001234567", 90)
	require.NoError(t, err)
	return s
}

func seeded(t *testing.T) *Store {
	t.Helper()
	st := New()
	require.NoError(t, st.Add(mustStudent(t, "S3", "Cara Lane", 19, "A")))
	require.NoError(t, st.Add(mustStudent(t, "S1", "Adam Smith", 20, "B")))
	require.NoError(t, st.Add(mustStudent(t, "S2", "Bea Adams", 20, "A")))
	return st
}

func ids(students []*types.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func TestAdd_DuplicateKeepsFirst(t *testing.T) {
	st := New()
	first := mustStudent(t, "S1", "First One", 20, "A")
	require.NoError(t, st.Add(first))

	err := st.Add(mustStudent(t, "S1", "Second One", 30, "B"))
	assert.ErrorIs(t, err, storage.ErrDuplicateID)

	got, err := st.Get("S1")
	require.NoError(t, err)
	assert.Same(t, first, got)
	assert.Equal(t, "First One", got.Name)
	assert.Equal(t, 1, st.Len())
}

func TestList_StoreOrderAndSnapshot(t *testing.T) {
	st := seeded(t)

	list := st.List()
	assert.Equal(t, []string{"S3", "S1", "S2"}, ids(list))

	list[0] = nil
	assert.Equal(t, []string{"S3", "S1", "S2"}, ids(st.List()))
}

func TestUpdate_AppliesNamedFields(t *testing.T) {
	st := seeded(t)
	s, _ := st.Get("S1")
	s.AddCourse("Math")

	err := st.Update("S1", types.StudentUpdate{Grade: ptr("C"), Email: ptr(" Adam@Mail.COM ")})
	require.NoError(t, err)

	got, _ := st.Get("S1")
	assert.Same(t, s, got, "update happens in place")
	assert.Equal(t, "C", got.Grade)
	assert.Equal(t, "adam@mail.com", got.Email)
	assert.Equal(t, "Adam Smith", got.Name)
	assert.Equal(t, []string{"Math"}, got.Courses)
	assert.Equal(t, "S1", got.ID)
}

func TestUpdate_InvalidLeavesRecordUnchanged(t *testing.T) {
	st := seeded(t)
	before := mustGetDict(t, st, "S1")

	err := st.Update("S1", types.StudentUpdate{Name: ptr("Adam Jones"), Age: ptr(150)})

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Field)
	assert.Equal(t, before, mustGetDict(t, st, "S1"))
}

func TestUpdate_UnknownID(t *testing.T) {
	st := seeded(t)
	err := st.Update("nope", types.StudentUpdate{Age: ptr(500)})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	st := seeded(t)

	removed, err := st.Delete("S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", removed.ID)

	_, err = st.Get("S1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, []string{"S3", "S2"}, ids(st.List()))

	_, err = st.Delete("S1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// re-adding puts the id at the end
	require.NoError(t, st.Add(mustStudent(t, "S1", "Adam Smith", 20, "B")))
	assert.Equal(t, []string{"S3", "S2", "S1"}, ids(st.List()))
}

func TestSearch(t *testing.T) {
	st := seeded(t)

	assert.Equal(t, []string{"S3", "S2"}, ids(st.Search(types.SearchFilter{Grade: ptr("A")})))
	assert.Equal(t, []string{"S1", "S2"}, ids(st.Search(types.SearchFilter{Name: ptr("ADAM")})))
	assert.Equal(t, []string{"S2"}, ids(st.Search(types.SearchFilter{Name: ptr("adam"), Grade: ptr("A"), Age: ptr(20)})))
	assert.Empty(t, st.Search(types.SearchFilter{Age: ptr(99)}))
	assert.Equal(t, ids(st.List()), ids(st.Search(types.SearchFilter{})))
}

func TestSearch_GradeIsSubsetOfList(t *testing.T) {
	st := seeded(t)

	var want []string
	for _, s := range st.List() {
		if s.Grade == "A" {
			want = append(want, s.ID)
		}
	}
	assert.Equal(t, want, ids(st.Search(types.SearchFilter{Grade: ptr("A")})))
}

func TestScenario_JohnDoe(t *testing.T) {
	st := New()
	s, err := types.NewStudent("S001", "John Doe", 20, "A", "John@Test.com", "03001234567", 95.0)
	require.NoError(t, err)

	ok, msg := storage.Outcome(storage.MsgAdded, st.Add(s))
	assert.True(t, ok)
	assert.Equal(t, "added", msg)

	got, _ := st.Get("S001")
	assert.Equal(t, "john@test.com", got.Email)

	ok, msg = storage.Outcome(storage.MsgUpdated, st.Update("S001", types.StudentUpdate{Attendance: ptr(105.0)}))
	assert.False(t, ok)
	assert.Contains(t, msg, "validation error")
	assert.Equal(t, 95.0, got.Attendance)

	_, err = st.Delete("S001")
	ok, msg = storage.Outcome(storage.MsgDeleted, err)
	assert.True(t, ok)
	assert.Equal(t, "deleted", msg)

	_, err = st.Get("S001")
	ok, msg = storage.Outcome("", err)
	assert.False(t, ok)
	assert.Equal(t, "not found", msg)
}

func mustGetDict(t *testing.T, st *Store, id string) types.Record {
	t.Helper()
	s, err := st.Get(id)
	require.NoError(t, err)
	return s.ToDict()
}
