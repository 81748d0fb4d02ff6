package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ambrydata/mpr/errs"
)

func TestSliceSourceIteratesThenExhausts(t *testing.T) {
	s := NewSliceSource([][]interface{}{{1, "a"}, {2, "b"}}, []string{"id", "name"})
	var got [][]interface{}
	for {
		row, ok, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, row)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if s.Headers()[0] != "id" {
		t.Errorf("Headers()[0] = %q, want id", s.Headers()[0])
	}
}

func TestRowCoercion(t *testing.T) {
	row, err := Row([]interface{}{1, "x", nil})
	if err != nil {
		t.Fatal(err)
	}
	if len(row) != 3 {
		t.Fatalf("len(row) = %d, want 3", len(row))
	}
}

func TestRequireFieldsMissing(t *testing.T) {
	err := RequireFields(map[string]string{"user": "alice"}, []string{"user", "password"})
	if !errors.Is(err, errs.MissingCredentials) {
		t.Fatalf("err = %v, want errs.MissingCredentials", err)
	}
}

func TestLocalFSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	var fs LocalFS
	if !fs.Exists(path) {
		t.Fatal("Exists should be true")
	}
	rc, err := fs.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()
	if err := fs.Remove(path); err != nil {
		t.Fatal(err)
	}
	if fs.Exists(path) {
		t.Fatal("Exists should be false after Remove")
	}
}
