package diagram

import (
	"bytes"
	"strings"
	test "testing"
)

func TestWriteTable(t *test.T) {
	runs := []*Run{
		makeRun("a", []int{1, 2}, []float64{1, 4}),
		makeRun("b", []int{2}, []float64{6}),
		makeRun("c", []int{2, 1}, []float64{8, 3}),
	}
	summary, err := Aggregate(runs)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, summary.Series[MaxFitnessColumn]); err != nil {
		t.Fatalf("WriteTable returned error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one row, got %q", buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "generation count max min mean std" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); strings.Join(fields, " ") != "2 3 8.0000 4.0000 6.0000 2.0000" {
		t.Errorf("Unexpected row %q", lines[1])
	}
}

func TestWriteTableUndefinedStd(t *test.T) {
	summary, err := Aggregate([]*Run{makeRun("a", []int{7}, []float64{1.5})})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, summary.Series[MaxFitnessColumn]); err != nil {
		t.Fatalf("WriteTable returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "NaN") {
		t.Errorf("Expected NaN std in %q", buf.String())
	}
}
