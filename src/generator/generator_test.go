package generator

import (
	"bytes"
	"math"
	"testing"

	"github.com/aliemreo/real-time-scheduling/src/parser"
)

func TestSameSeedSameSet(t *testing.T) {
	opts := Options{NumTasks: 8, Utilization: 0.6, Seed: 42}
	var a, b bytes.Buffer

	if _, err := New(opts).WriteTo(&a); err != nil {
		t.Fatal(err)
	}
	if _, err := New(opts).WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("identical options must generate identical task files")
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	var a, b bytes.Buffer
	New(Options{NumTasks: 8, Seed: 1}).WriteTo(&a)
	New(Options{NumTasks: 8, Seed: 2}).WriteTo(&b)

	if a.String() == b.String() {
		t.Error("different seeds should generate different sets")
	}
}

func TestUtilizationTracksTarget(t *testing.T) {
	for _, target := range []float64{0.3, 0.7, 0.9} {
		g := New(Options{NumTasks: 6, Utilization: target, Seed: 7})
		if got := g.TotalUtilization(); math.Abs(got-target) > 0.1 {
			t.Errorf("target %g: generated utilization %g drifts too far", target, got)
		}
	}
}

func TestOutputParsesBack(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(Options{NumTasks: 5, Seed: 3}).WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	ts, err := parser.Parse(&buf)
	if err != nil {
		t.Fatalf("generated file failed to parse: %v", err)
	}
	if ts.Catalog.Len() != 5 {
		t.Errorf("expected 5 tasks, got %d", ts.Catalog.Len())
	}
	if warnings := parser.Validate(ts); len(warnings) != 0 {
		t.Errorf("generated set should be valid, got %v", warnings)
	}
}

func TestDefaultsApplied(t *testing.T) {
	g := New(Options{})
	if len(g.tasks) != 5 {
		t.Errorf("default task count should be 5, got %d", len(g.tasks))
	}
	if got := g.TotalUtilization(); math.Abs(got-0.7) > 0.1 {
		t.Errorf("default utilization should track 0.7, got %g", got)
	}
}
