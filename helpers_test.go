package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	test "testing"
)

// writeRunFile writes <dir>/<prefix>_<i>.csv with a Generation,MaxFitness
// header and one row per generation/value pair.
func writeRunFile(t *test.T, dir, prefix string, i int, generations []int, values []float64) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("Generation,MaxFitness,MeanFitness\n")
	for k, g := range generations {
		fmt.Fprintf(&sb, "%d,%g,%g\n", g, values[k], values[k]/2)
	}
	return writeRaw(t, dir, fmt.Sprintf("%s_%d.csv", prefix, i), sb.String())
}

func writeRaw(t *test.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func makeRun(name string, generations []int, values []float64) *Run {
	table := NewTable([]string{MaxFitnessColumn})
	for i, g := range generations {
		table.AppendRow(g, map[string]float64{MaxFitnessColumn: values[i]})
	}
	return &Run{Name: name, Table: table}
}

// scenarioA is three runs over generations 1..3 with one record each.
func scenarioA() []*Run {
	gens := []int{1, 2, 3}
	return []*Run{
		makeRun("run1", gens, []float64{1, 2, 3}),
		makeRun("run2", gens, []float64{2, 3, 4}),
		makeRun("run3", gens, []float64{3, 4, 5}),
	}
}
