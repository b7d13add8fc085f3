package profile

import (
	"slices"
	"testing"
)

func TestProfiler_StartEmptyMode(t *testing.T) {
	p := Profiler{Path: t.TempDir()}

	if p.Enabled() {
		t.Error("empty mode reported enabled")
	}

	stop := p.Start()
	if _, ok := stop.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", stop)
	}

	stop.Stop()
}

func TestProfiler_UnknownMode(t *testing.T) {
	p := Profiler{Mode: "bogus", Path: t.TempDir(), Quiet: true}

	if p.Enabled() {
		t.Error("unknown mode reported enabled")
	}

	p.Start().Stop()
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() = %v, not sorted", m)
	}
}
