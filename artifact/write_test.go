package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "config.h")

	steps := []struct {
		content string
		written bool
	}{
		{"first\n", true},
		{"first\n", false},
		{"second\n", true},
		{"second\n", false},
	}

	for i, s := range steps {
		written, err := Write(path, []byte(s.content))
		if err != nil {
			t.Fatalf("step %d: Write() error: %v", i, err)
		}

		if written != s.written {
			t.Errorf("step %d: written = %v, want %v", i, written, s.written)
		}

		got, err := os.ReadFile(path)
		if err != nil || string(got) != s.content {
			t.Errorf("step %d: content = %q, %v", i, got, err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the artifact", len(entries))
	}
}

func TestWrite_Failure(t *testing.T) {
	dir := t.TempDir()

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Write(filepath.Join(blocker, "config.h"), []byte("x")); !errors.Is(err, ErrArtifactWrite) {
		t.Errorf("Write() error = %v, want ErrArtifactWrite", err)
	}

	got, err := os.ReadFile(blocker)
	if err != nil || string(got) != "keep" {
		t.Errorf("blocker changed: %q, %v", got, err)
	}
}

func TestWrite_ReplacesByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.h")

	if err := os.WriteFile(path, []byte("old\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	held, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Close()

	if written, err := Write(path, []byte("new\n")); err != nil || !written {
		t.Fatalf("Write() = %v, %v", written, err)
	}

	prev, err := io.ReadAll(held)
	if err != nil || string(prev) != "old\n" {
		t.Errorf("open handle reads %q, %v; want the replaced file intact", prev, err)
	}

	got, err := os.ReadFile(path)
	if err != nil || string(got) != "new\n" {
		t.Errorf("content = %q, %v", got, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if perm := info.Mode().Perm(); perm&0o600 != 0o600 || perm&0o022 != 0 {
		t.Errorf("mode = %v, want owner read-write and no group or other write", perm)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the artifact", len(entries))
	}
}

func TestGenerate(t *testing.T) {
	res := firmware(t)

	for _, jobs := range []int{1, 4} {
		dir := t.TempDir()

		run := func() []Result {
			t.Helper()

			results, err := Generate(context.Background(), res, DefaultLayout(), dir,
				WithJobs(jobs), WithLogger(quiet))
			if err != nil {
				t.Fatalf("jobs=%d: Generate() error: %v", jobs, err)
			}

			return results
		}

		first := run()
		if len(first) != 4 {
			t.Fatalf("jobs=%d: %d results, want 4", jobs, len(first))
		}

		plan := mustPlan(t, res, DefaultLayout())

		for i, r := range first {
			if r.ID != plan[i].Spec.ID || !r.Written || r.Symbols != plan[i].Len() {
				t.Errorf("jobs=%d: result %d = %+v", jobs, i, r)
			}

			got, err := os.ReadFile(r.Path)
			if err != nil || string(got) != string(Render(plan[i], res)) {
				t.Errorf("jobs=%d: %s content mismatch (%v)", jobs, r.Path, err)
			}
		}

		for i, r := range run() {
			if r.Written {
				t.Errorf("jobs=%d: result %d rewritten on identical input", jobs, i)
			}
		}
	}
}

func TestGenerate_Failure(t *testing.T) {
	res := firmware(t)
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "src", "drivers"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := Generate(context.Background(), res, DefaultLayout(), dir, WithLogger(quiet))
	if !errors.Is(err, ErrArtifactWrite) {
		t.Fatalf("Generate() error = %v, want ErrArtifactWrite", err)
	}

	if len(results) != 2 || results[0].ID != "system_config" || results[1].ID != "board_config" {
		t.Errorf("partial results = %+v", results)
	}
}
