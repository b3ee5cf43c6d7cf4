package diagram

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	test "testing"

	chart "github.com/wcharczuk/go-chart/v2"
)

func summaryFor(t *test.T, runs []*Run) *Summary {
	t.Helper()
	s, err := Aggregate(runs)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	return s
}

func TestBuildChartLayout(t *test.T) {
	ch, err := BuildChart(summaryFor(t, scenarioA()), nil)
	if err != nil {
		t.Fatalf("BuildChart returned error: %v", err)
	}

	if ch.Title != DefaultTitle {
		t.Errorf("Expected title %q, got %q", DefaultTitle, ch.Title)
	}
	if ch.XAxis.Name != DefaultXLabel || ch.YAxis.Name != DefaultYLabel {
		t.Errorf("Unexpected axis labels %q / %q", ch.XAxis.Name, ch.YAxis.Name)
	}
	if ch.XAxis.GridMajorStyle.StrokeWidth == 0 || ch.YAxis.GridMajorStyle.StrokeWidth == 0 {
		t.Errorf("Expected grid lines on both axes")
	}
	if len(ch.Elements) != 1 {
		t.Errorf("Expected a legend element, got %d elements", len(ch.Elements))
	}

	// three bands followed by three lines
	if len(ch.Series) != 6 {
		t.Fatalf("Expected 6 series, got %d", len(ch.Series))
	}
	var names []string
	for _, s := range ch.Series[3:] {
		line, ok := s.(chart.ContinuousSeries)
		if !ok {
			t.Fatalf("Expected line series, got %T", s)
		}
		names = append(names, line.Name)
	}
	want := []string{"Max Fitness", "Min Fitness", "Mean Fitness"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Series %d: expected %q, got %q", i, want[i], names[i])
		}
	}

	maxLine := ch.Series[3].(chart.ContinuousSeries)
	minLine := ch.Series[4].(chart.ContinuousSeries)
	meanLine := ch.Series[5].(chart.ContinuousSeries)
	for i, y := range []float64{2, 3, 4} {
		if maxLine.YValues[i] != y || meanLine.YValues[i] != y {
			t.Errorf("Max and Mean Fitness lines must both plot the mean, got %v and %v", maxLine.YValues, meanLine.YValues)
		}
	}
	if minLine.YValues[0] != 1 || minLine.YValues[2] != 3 {
		t.Errorf("Min Fitness line must plot the minimum, got %v", minLine.YValues)
	}
	if len(meanLine.Style.StrokeDashArray) == 0 || len(minLine.Style.StrokeDashArray) == 0 {
		t.Errorf("Min and Mean Fitness lines should be dashed")
	}
}

func TestBandSeriesBounds(t *test.T) {
	b := newBandSeries("x", []float64{1, 2}, []float64{5, 7}, []float64{1, math.NaN()}, chart.ColorBlue)
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	x, lo, hi := b.GetBoundedValues(0)
	if x != 1 || lo != 4 || hi != 6 {
		t.Errorf("Expected (1, 4, 6), got (%v, %v, %v)", x, lo, hi)
	}
	_, lo, hi = b.GetBoundedValues(1)
	if lo != 7 || hi != 7 {
		t.Errorf("Undefined deviation should collapse the band, got (%v, %v)", lo, hi)
	}

	bad := newBandSeries("bad", []float64{1}, []float64{1, 2}, []float64{1}, chart.ColorBlue)
	if bad.Validate() == nil {
		t.Errorf("Expected mismatched lengths to fail validation")
	}
}

func TestRenderPNG(t *test.T) {
	var buf bytes.Buffer
	config := DefaultChartConfig()
	config.Width, config.Height = 640, 480

	if err := RenderPNG(&buf, summaryFor(t, scenarioA()), config); err != nil {
		t.Fatalf("RenderPNG returned error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("Expected 640x480 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderSingleGeneration(t *test.T) {
	// one record at one generation: NaN deviation and a degenerate x range
	runs := []*Run{makeRun("a", []int{4}, []float64{2.5})}
	var buf bytes.Buffer
	if err := RenderPNG(&buf, summaryFor(t, runs), nil); err != nil {
		t.Fatalf("RenderPNG returned error: %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("Expected PNG output")
	}
}

func TestBuildChartEmptySummary(t *test.T) {
	if _, err := BuildChart(&Summary{}, nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestBuildChartUnknownColumn(t *test.T) {
	config := DefaultChartConfig()
	config.Series[1].Column = "MinFitness"
	if _, err := BuildChart(summaryFor(t, scenarioA()), config); err == nil {
		t.Errorf("Expected an error for a column that was not aggregated")
	}
}

func TestChartConfigColumns(t *test.T) {
	config := DefaultChartConfig()
	if cols := config.Columns(); len(cols) != 1 || cols[0] != MaxFitnessColumn {
		t.Errorf("Default chart should only need MaxFitness, got %v", cols)
	}
	config.Series[1].Column = "MinFitness"
	config.Series[2].Column = "MeanFitness"
	cols := config.Columns()
	if len(cols) != 3 || cols[1] != "MinFitness" || cols[2] != "MeanFitness" {
		t.Errorf("Unexpected columns %v", cols)
	}
}
