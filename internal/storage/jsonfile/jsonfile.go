// Package jsonfile persists the student store as a single JSON object on
// disk: top-level keys are student ids, values are the student's fields.
//
//	{
//	    "S001": {
//	        "student_id": "S001",
//	        "name": "John Doe",
//	        ...
//	    }
//	}
//
// The file is human-editable, so Load is forgiving: a bad entry is logged
// and skipped, and only a file that is not a JSON object at all aborts the
// load.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// indent is the per-level indentation written by Save. Load does not care.
const indent = "    "

// JSONFile is the file-backed storage.Persister.
type JSONFile struct {
	path string
	log  *slog.Logger
}

var _ storage.Persister = (*JSONFile)(nil)

// New returns a persister for the file at path. The file does not need to
// exist yet. A nil logger falls back to slog.Default().
func New(path string, log *slog.Logger) *JSONFile {
	if log == nil {
		log = slog.Default()
	}
	return &JSONFile{
		path: path,
		log:  log.With(slog.String("component", "jsonfile"), slog.String("path", path)),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Save writes every student in store order, replacing the file.
//
// The data goes to a temporary file in the same directory first and is
// renamed over the target, so a crash mid-write leaves the previous file
// intact.
// ─────────────────────────────────────────────────────────────────────────────
func (j *JSONFile) Save(store storage.Storage) error {
	data, err := encode(store.List())
	if err != nil {
		return fmt.Errorf("jsonfile.Save: encode: %w", err)
	}

	dir, base := filepath.Split(j.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile.Save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile.Save: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile.Save: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile.Save: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("jsonfile.Save: chmod: %w", err)
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		return fmt.Errorf("jsonfile.Save: rename: %w", err)
	}

	j.log.Debug("students saved", slog.Int("count", store.Len()))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Load adds every valid entry of the file to store, in file order.
//
//	file missing            → nil, store untouched
//	not a JSON object       → ErrMalformedFile, store untouched
//	entry invalid/duplicate → entry skipped with a warning, load continues
//
// ─────────────────────────────────────────────────────────────────────────────
func (j *JSONFile) Load(store storage.Storage) error {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		j.log.Info("data file does not exist yet, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsonfile.Load: read: %w", err)
	}

	entries, err := decodeEntries(data)
	if err != nil {
		j.log.Error("failed to parse data file, nothing loaded", slog.String("error", err.Error()))
		return fmt.Errorf("jsonfile.Load: %w: %v", storage.ErrMalformedFile, err)
	}

	loaded := 0
	for _, e := range entries {
		student, err := decodeStudent(e.value)
		if err == nil {
			err = store.Add(student)
		}
		if err != nil {
			j.log.Warn("skipping invalid student record",
				slog.String("key", e.key),
				slog.String("error", fmt.Errorf("%w: %v", storage.ErrPartialRecord, err).Error()))
			continue
		}
		loaded++
	}

	j.log.Info("students loaded",
		slog.Int("loaded", loaded),
		slog.Int("skipped", len(entries)-loaded))
	return nil
}

// Close is a no-op; the file is opened only for the duration of each call.
func (j *JSONFile) Close() error {
	return nil
}

type entry struct {
	key   string
	value json.RawMessage
}

// decodeEntries splits the top-level object into its entries, keeping file
// order (a map would lose it). Any syntax error anywhere in the file fails
// the whole decode.
func decodeEntries(data []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("top-level value is not an object")
	}

	entries := make([]entry, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: key, value: raw})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected %v after top-level object", tok)
	}

	return entries, nil
}

// storedStudent mirrors types.Record with pointers so missing keys can be
// told apart from zero values. Age is a float because older files may
// carry it as one; it is truncated like any other numeric input.
type storedStudent struct {
	ID         *string  `json:"student_id"`
	Name       *string  `json:"name"`
	Age        *float64 `json:"age"`
	Grade      *string  `json:"grade"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Courses    []string `json:"courses"`
	Attendance *float64 `json:"attendance"`
}

func decodeStudent(raw json.RawMessage) (*types.Student, error) {
	var st storedStudent
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}

	required := []struct {
		key     string
		present bool
	}{
		{"student_id", st.ID != nil},
		{"name", st.Name != nil},
		{"age", st.Age != nil},
		{"grade", st.Grade != nil},
		{"email", st.Email != nil},
		{"phone", st.Phone != nil},
	}
	for _, r := range required {
		if !r.present {
			return nil, fmt.Errorf("missing field %q", r.key)
		}
	}

	attendance := types.DefaultAttendance
	if st.Attendance != nil {
		attendance = *st.Attendance
	}

	return types.FromRecord(types.Record{
		ID:         *st.ID,
		Name:       *st.Name,
		Age:        clampAge(*st.Age),
		Grade:      *st.Grade,
		Email:      *st.Email,
		Phone:      *st.Phone,
		Courses:    st.Courses,
		Attendance: attendance,
	})
}

// clampAge truncates to int without overflowing; anything outside int32 is
// already far outside the valid range and fails validation either way.
func clampAge(age float64) int {
	switch {
	case math.IsNaN(age):
		return 0
	case age > math.MaxInt32:
		return math.MaxInt32
	case age < math.MinInt32:
		return math.MinInt32
	}
	return int(age)
}

// encode renders students as one indented object keyed by id, keys in
// store order and fields in Record order.
func encode(students []*types.Student) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, s := range students {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := json.Marshal(s.ID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.ToDict())
		if err != nil {
			return nil, err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(value)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
