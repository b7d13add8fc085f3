package pkg

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"
)

func TestError_Error(t *testing.T) {
	base := NewError("load failed")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sentinel", base, "load failed"},
		{"wrapped", base.Wrap(fs.ErrNotExist), "load failed: file does not exist"},
		{"cause only", WrapError(fs.ErrNotExist), "file does not exist"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	errA := NewError("a")
	errB := NewError("b")

	derived := errA.With(slog.String("file", "Kconfig")).Wrap(fs.ErrNotExist)

	if !errors.Is(derived, errA) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(derived, errB) {
		t.Error("derived error matches an unrelated sentinel")
	}

	if !errors.Is(derived, fs.ErrNotExist) {
		t.Error("derived error does not match its cause")
	}

	outer := fmt.Errorf("context: %w", derived)
	if !errors.Is(outer, errA) {
		t.Error("fmt-wrapped error does not match sentinel")
	}

	if !errors.Is(errA.Wrap(nil), errA.With(slog.Int("n", 1))) {
		t.Error("derived errors of the same kind do not match")
	}
}

func TestError_With(t *testing.T) {
	base := NewError("base")
	one := base.With(slog.String("symbol", "FOO"))
	two := one.With(slog.Int("line", 3))

	if len(base.Attrs()) != 0 {
		t.Errorf("sentinel mutated: %v", base.Attrs())
	}

	if len(one.Attrs()) != 1 {
		t.Errorf("one.Attrs() = %v, want 1 attr", one.Attrs())
	}

	v, ok := two.Attr("symbol")
	if !ok || v.String() != "FOO" {
		t.Errorf("Attr(symbol) = %v, %v", v, ok)
	}

	if _, ok := two.Attr("missing"); ok {
		t.Error("Attr(missing) reported present")
	}
}

func TestError_LogValue(t *testing.T) {
	err := NewError("write").
		With(slog.String("path", "out.h")).
		Wrap(fs.ErrPermission)

	group := err.LogValue().Group()

	want := map[string]string{
		"error": "write",
		"cause": fs.ErrPermission.Error(),
		"path":  "out.h",
	}

	if len(group) != len(want) {
		t.Fatalf("LogValue() has %d attrs, want %d", len(group), len(want))
	}

	for _, a := range group {
		if want[a.Key] != a.Value.String() {
			t.Errorf("attr %s = %q, want %q", a.Key, a.Value.String(), want[a.Key])
		}
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Error("Version() is empty")
	}
}
