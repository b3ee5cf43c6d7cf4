package diagram

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xrash/smetrics"
)

// LoaderConfig locates the run files: <Dir>/<Prefix>_<i>.csv for i in 1..FileCount.
type LoaderConfig struct {
	Dir       string `toml:"dir" yaml:"dir"`
	Prefix    string `toml:"prefix" yaml:"prefix"`
	FileCount int    `toml:"file_count" yaml:"file_count"`
	Workers   int    `toml:"workers" yaml:"workers"`
}

func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Dir:       ".",
		Prefix:    DefaultFilePrefix,
		FileCount: DefaultFileCount,
		Workers:   1,
	}
}

// FileNames returns the input paths in load order.
func (c *LoaderConfig) FileNames() []string {
	names := make([]string, c.FileCount)
	for i := range names {
		names[i] = filepath.Join(c.Dir, fmt.Sprintf("%s_%d%s", c.Prefix, i+1, DefaultFileExt))
	}
	return names
}

type Loader struct {
	Config  *LoaderConfig
	Columns []string
}

// NewLoader returns a loader reading the generation column plus the given
// metric columns. With no columns only MaxFitness is read.
func NewLoader(config *LoaderConfig, columns ...string) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if len(columns) == 0 {
		columns = []string{MaxFitnessColumn}
	}
	return &Loader{Config: config, Columns: columns}
}

// Load reads every run file. The result is in file order and the returned
// error is the first failure in file order; no runs are returned on error.
func (l *Loader) Load() ([]*Run, error) {
	if l.Config.FileCount < 1 {
		return nil, fmt.Errorf("file count must be at least 1, got %d", l.Config.FileCount)
	}
	files := l.Config.FileNames()

	if l.Config.Workers <= 1 {
		runs := make([]*Run, 0, len(files))
		for _, f := range files {
			run, err := LoadRun(f, l.Columns)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}
		return runs, nil
	}

	runs := make([]*Run, len(files))
	errs := make([]error, len(files))
	sem := make(chan struct{}, l.Config.Workers)
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			runs[idx], errs[idx] = LoadRun(path, l.Columns)
		}(i, f)
	}
	wg.Wait()

	if err := firstError(errs); err != nil {
		return nil, err
	}
	return runs, nil
}

// LoadRuns loads every run file named by config.
func LoadRuns(config *LoaderConfig, columns ...string) ([]*Run, error) {
	return NewLoader(config, columns...).Load()
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadRun reads a single run file.
func LoadRun(path string, columns []string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	run, err := ReadRun(f, path, columns)
	if err != nil {
		return nil, err
	}
	logger.WithField("stage", StageLoad).
		WithField("file", path).
		WithField("records", run.Len()).
		Debug("loaded run")
	return run, nil
}

// ReadRun parses a delimited table with a header row. The Generation column
// and every requested column must be present; other columns are ignored.
func ReadRun(r io.Reader, name string, columns []string) (*Run, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{File: name, Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, csvError(name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	genIdx, err := columnIndex(name, header, GenerationColumn)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(columns))
	for _, c := range columns {
		if idx[c], err = columnIndex(name, header, c); err != nil {
			return nil, err
		}
	}

	table := NewTable(columns)
	values := make(map[string]float64, len(columns))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}
		line, _ := cr.FieldPos(0)

		gen, err := parseGeneration(rec[genIdx])
		if err != nil {
			return nil, &ParseError{File: name, Line: line, Column: GenerationColumn, Err: err}
		}
		for c, i := range idx {
			v, err := parseMetric(rec[i])
			if err != nil {
				return nil, &ParseError{File: name, Line: line, Column: c, Err: err}
			}
			values[c] = v
		}
		table.AppendRow(gen, values)
	}

	return &Run{Name: name, Table: table}, nil
}

func csvError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{File: name, Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("failed to read %s: %w", name, err)
}

func columnIndex(name string, header []string, column string) (int, error) {
	for i, h := range header {
		if h == column {
			return i, nil
		}
	}
	return -1, &ParseError{
		File:       name,
		Column:     column,
		Suggestion: closestColumn(header, column),
		Err:        errors.New("required column missing"),
	}
}

// closestColumn returns the header most similar to want, or "" when nothing
// is close enough to be a plausible typo.
func closestColumn(header []string, want string) string {
	best, bestScore := "", 0.85
	for _, h := range header {
		score := smetrics.JaroWinkler(strings.ToLower(h), strings.ToLower(want), 0.7, 4)
		if score >= bestScore {
			best, bestScore = h, score
		}
	}
	return best
}

func parseGeneration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if g, err := strconv.Atoi(s); err == nil {
		return g, nil
	}
	// Writers that go through a float type emit "3.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("generation %q is not an integer", s)
	}
	return int(f), nil
}

func parseMetric(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not numeric", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}
