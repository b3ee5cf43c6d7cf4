package diagram

import "math"

// Table is a minimal columnar dataset keyed by generation. Row i is
// Generations[i] together with Columns[name][i] for every column.
type Table struct {
	Generations []int
	Columns     map[string][]float64
}

func NewTable(columns []string) *Table {
	t := &Table{Columns: make(map[string][]float64, len(columns))}
	for _, c := range columns {
		t.Columns[c] = nil
	}
	return t
}

func (t *Table) Len() int {
	return len(t.Generations)
}

// Column returns the values of a metric column.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.Columns[name]
	return v, ok
}

// ColumnNames returns the metric columns held by the table, in no particular order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for n := range t.Columns {
		names = append(names, n)
	}
	return names
}

// AppendRow adds one record. values must hold an entry for every column.
func (t *Table) AppendRow(generation int, values map[string]float64) {
	t.Generations = append(t.Generations, generation)
	for name := range t.Columns {
		t.Columns[name] = append(t.Columns[name], values[name])
	}
}

func (t *Table) appendFrom(src *Table, row int) {
	t.Generations = append(t.Generations, src.Generations[row])
	for name := range t.Columns {
		v := math.NaN()
		if col, ok := src.Columns[name]; ok && row < len(col) {
			v = col[row]
		}
		t.Columns[name] = append(t.Columns[name], v)
	}
}

// Filter returns the rows whose generation is in set. Duplicate generations
// are kept.
func (t *Table) Filter(set GenerationSet) *Table {
	out := NewTable(t.ColumnNames())
	for i, g := range t.Generations {
		if set.Contains(g) {
			out.appendFrom(t, i)
		}
	}
	return out
}

// Concat appends every row of other. Columns missing from other are filled
// with NaN.
func (t *Table) Concat(other *Table) {
	for i := range other.Generations {
		t.appendFrom(other, i)
	}
}

// Run is one experiment run, usually loaded from a single file.
type Run struct {
	Name string
	*Table
}

// DistinctGenerations returns the distinct generations of the run.
func (r *Run) DistinctGenerations() GenerationSet {
	return NewGenerationSet(r.Table.Generations...)
}
