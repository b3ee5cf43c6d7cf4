package diagram

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SummaryPoint holds the statistics of one metric column for one generation.
type SummaryPoint struct {
	Generation int
	Max        float64
	Min        float64
	Mean       float64
	Std        float64
	Count      int
}

// SummarySeries holds per-generation statistics of one metric column across
// all runs. Every slice is aligned with Generations, which is ascending.
// Std is the Bessel-corrected sample standard deviation and is NaN for
// generations with a single record.
type SummarySeries struct {
	Column      string
	Generations []int
	Max         []float64
	Min         []float64
	Mean        []float64
	Std         []float64
	Count       []int
}

func (s *SummarySeries) Len() int {
	return len(s.Generations)
}

// Points returns the series as one row per generation.
func (s *SummarySeries) Points() []SummaryPoint {
	out := make([]SummaryPoint, s.Len())
	for i := range out {
		out[i] = SummaryPoint{
			Generation: s.Generations[i],
			Max:        s.Max[i],
			Min:        s.Min[i],
			Mean:       s.Mean[i],
			Std:        s.Std[i],
			Count:      s.Count[i],
		}
	}
	return out
}

// Stat returns the line named by one of LineMean, LineMin or LineMax.
func (s *SummarySeries) Stat(line string) ([]float64, error) {
	switch line {
	case LineMean, "":
		return s.Mean, nil
	case LineMin:
		return s.Min, nil
	case LineMax:
		return s.Max, nil
	}
	return nil, fmt.Errorf("unknown line statistic %q", line)
}

// SeriesFromPoints rebuilds a series, sorting the points by generation.
func SeriesFromPoints(column string, points []SummaryPoint) *SummarySeries {
	sorted := make([]SummaryPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Generation < sorted[j].Generation })

	s := newSummarySeries(column, len(sorted))
	for _, p := range sorted {
		s.Generations = append(s.Generations, p.Generation)
		s.Max = append(s.Max, p.Max)
		s.Min = append(s.Min, p.Min)
		s.Mean = append(s.Mean, p.Mean)
		s.Std = append(s.Std, p.Std)
		s.Count = append(s.Count, p.Count)
	}
	return s
}

func newSummarySeries(column string, n int) *SummarySeries {
	return &SummarySeries{
		Column:      column,
		Generations: make([]int, 0, n),
		Max:         make([]float64, 0, n),
		Min:         make([]float64, 0, n),
		Mean:        make([]float64, 0, n),
		Std:         make([]float64, 0, n),
		Count:       make([]int, 0, n),
	}
}

// Summary is the aggregated result of a set of runs.
type Summary struct {
	Runs        int
	Generations []int
	Series      map[string]*SummarySeries
}

// Column returns the series computed for a metric column.
func (s *Summary) Column(name string) (*SummarySeries, error) {
	series, ok := s.Series[name]
	if !ok {
		return nil, fmt.Errorf("no summary for column %q", name)
	}
	return series, nil
}

// Merge restricts every run to the generations in set and concatenates
// them in run order.
func Merge(runs []*Run, set GenerationSet, columns []string) *Table {
	merged := NewTable(columns)
	for _, r := range runs {
		merged.Concat(r.Filter(set))
	}
	return merged
}

// Summarize groups merged by generation and computes max, min, mean and
// sample standard deviation of column for every generation in set.
func Summarize(merged *Table, set GenerationSet, column string) (*SummarySeries, error) {
	if set.Len() == 0 {
		return nil, ErrEmptyInput
	}
	values, ok := merged.Column(column)
	if !ok {
		return nil, fmt.Errorf("merged dataset has no column %q", column)
	}

	groups := make(map[int][]float64, set.Len())
	for i, g := range merged.Generations {
		groups[g] = append(groups[g], values[i])
	}

	generations := set.Sorted()
	s := newSummarySeries(column, len(generations))
	for _, g := range generations {
		vals := groups[g]
		if len(vals) == 0 {
			return nil, fmt.Errorf("generation %d has no records in the merged dataset", g)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if len(vals) == 1 {
			std = math.NaN()
		}
		s.Generations = append(s.Generations, g)
		s.Max = append(s.Max, floats.Max(vals))
		s.Min = append(s.Min, floats.Min(vals))
		s.Mean = append(s.Mean, mean)
		s.Std = append(s.Std, std)
		s.Count = append(s.Count, len(vals))
	}
	return s, nil
}

// Aggregate intersects the runs' generations, merges the runs and summarizes
// each requested column. It fails with ErrEmptyInput when the runs share no
// generation.
func Aggregate(runs []*Run, columns ...string) (*Summary, error) {
	if len(columns) == 0 {
		columns = []string{MaxFitnessColumn}
	}
	set := CommonGenerations(runs)
	if set.Len() == 0 {
		return nil, ErrEmptyInput
	}

	merged := Merge(runs, set, columns)
	summary := &Summary{
		Runs:        len(runs),
		Generations: set.Sorted(),
		Series:      make(map[string]*SummarySeries, len(columns)),
	}
	for _, c := range columns {
		if _, done := summary.Series[c]; done {
			continue
		}
		s, err := Summarize(merged, set, c)
		if err != nil {
			return nil, err
		}
		summary.Series[c] = s
	}

	logger.WithField("stage", StageAggregate).
		WithField("records", merged.Len()).
		WithField("generations", len(summary.Generations)).
		Debug("aggregated runs")
	return summary, nil
}
