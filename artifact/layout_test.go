package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultLayout_Valid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("DefaultLayout().Validate() error: %v", err)
	}
}

func TestLayout_FormatParse(t *testing.T) {
	want := DefaultLayout()

	data, err := want.Format(context.Background())
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	got, err := ParseLayout(data, "layout.yaml")
	if err != nil {
		t.Fatalf("ParseLayout() error: %v\n%s", err, data)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLayout(Format()) = %+v, want %+v", got, want)
	}
}

func TestParseLayout(t *testing.T) {
	const valid = `
artifacts:
  - id: core
    path: include/core.h
    guard: CORE_H
    title: Core
    counts:
      - name: UART_COUNT
        symbols: [UART0, UART1]
rules:
  - glob: "**/Kconfig"
    artifact: core
`

	l, err := ParseLayout([]byte(valid), "valid")
	if err != nil {
		t.Fatalf("ParseLayout() error: %v", err)
	}

	if len(l.Artifacts) != 1 || l.Artifacts[0].Counts[0].Name != "UART_COUNT" || l.Rules[0].Glob != "**/Kconfig" {
		t.Errorf("ParseLayout() = %+v", l)
	}

	spec := "artifacts:\n  - {id: a, path: a.h, guard: A_H}\n"

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", spec + "rules:\n  - {file: Kconfig, artifact: a, color: red}\n"},
		{"missing id", "artifacts:\n  - {path: a.h, guard: A_H}\n"},
		{"missing path", "artifacts:\n  - {id: a, guard: A_H}\n"},
		{"missing guard", "artifacts:\n  - {id: a, path: a.h}\n"},
		{"duplicate id", spec + "  - {id: a, path: b.h, guard: B_H}\n"},
		{"duplicate path", spec + "  - {id: b, path: a.h, guard: B_H}\n"},
		{"empty count", "artifacts:\n  - {id: a, path: a.h, guard: A_H, counts: [{name: N}]}\n"},
		{"unknown artifact", spec + "rules:\n  - {prefix: src/, artifact: b}\n"},
		{"no matcher", spec + "rules:\n  - {artifact: a}\n"},
		{"two matchers", spec + "rules:\n  - {prefix: src/, file: Kconfig, artifact: a}\n"},
		{"bad glob", spec + "rules:\n  - {glob: \"src/[\", artifact: a}\n"},
		{"not yaml", "artifacts: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLayout([]byte(tt.yaml), tt.name); !errors.Is(err, ErrLayout) {
				t.Errorf("ParseLayout() error = %v, want ErrLayout", err)
			}
		})
	}
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadLayout(filepath.Join(dir, "missing.yaml")); !errors.Is(err, ErrLayout) {
		t.Errorf("LoadLayout(missing) error = %v, want ErrLayout", err)
	}

	data, err := DefaultLayout().Format(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout() error: %v", err)
	}

	if len(l.Rules) != 4 {
		t.Errorf("LoadLayout() rules = %d, want 4", len(l.Rules))
	}
}
