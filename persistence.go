package diagram

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	copier "github.com/jinzhu/copier"
	gorm "gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type StoreConfig struct {
	Name          string   `toml:"name" yaml:"name"`
	Path          string   `toml:"path" yaml:"path"`
	SQLitePragmas []string `toml:"pragmas" yaml:"pragmas"`
	SQLiteOptions []string `toml:"options" yaml:"options"`
}

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Name:          DefaultStoreName,
		Path:          ".",
		SQLitePragmas: []string{"journal_mode(WAL)", "busy_timeout(5000)"},
	}
}

// DSN builds the sqlite connection string. A Name of ":memory:" opens a
// shared in-memory database and ignores Path.
func (c *StoreConfig) DSN() string {
	var params []string
	for _, p := range c.SQLitePragmas {
		params = append(params, "_pragma="+p)
	}
	params = append(params, c.SQLiteOptions...)

	var dsn strings.Builder
	if c.Name == ":memory:" {
		dsn.WriteString("file::memory:")
		params = append(params, "cache=shared")
	} else {
		dsn.WriteString(filepath.Join(c.Path, c.Name))
	}
	if len(params) > 0 {
		dsn.WriteRune('?')
		dsn.WriteString(strings.Join(params, "&"))
	}
	return dsn.String()
}

// Experiment is one stored summary.
type Experiment struct {
	ID          uint
	Name        string
	Runs        int
	CreatedAt   time.Time
	Generations []GenerationSummary
}

// GenerationSummary is one row of a stored SummarySeries. StdDev is NULL
// where the deviation is undefined.
type GenerationSummary struct {
	ID           uint
	ExperimentID uint `gorm:"index"`
	MetricColumn string
	Generation   int
	Max          float64
	Min          float64
	Mean         float64
	StdDev       *float64
	Count        int
}

type SummaryStore struct {
	Config *StoreConfig
	DB     *gorm.DB
}

func NewSummaryStore(config *StoreConfig) (*SummaryStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(config.Name) == 0 {
		return nil, fmt.Errorf("Name of database must be defined")
	}
	if len(config.Path) == 0 && config.Name != ":memory:" {
		return nil, fmt.Errorf("Path to database must be defined")
	}

	db, err := gorm.Open(sqlite.Open(config.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open summary store: %w", err)
	}

	s := &SummaryStore{Config: config, DB: db}
	if err := s.DB.AutoMigrate(&Experiment{}, &GenerationSummary{}); err != nil {
		return nil, fmt.Errorf("failed to migrate summary store: %w", err)
	}
	return s, nil
}

func (s *SummaryStore) Close() error {
	sqldb, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return sqldb.Close()
}

// Save stores every series of the summary under a new experiment and
// returns its id.
func (s *SummaryStore) Save(name string, summary *Summary) (uint, error) {
	if summary == nil {
		return 0, fmt.Errorf("summary cannot be nil")
	}

	exp := &Experiment{Name: name, Runs: summary.Runs}
	for _, col := range sortedKeys(summary.Series) {
		points := summary.Series[col].Points()
		var rows []GenerationSummary
		if err := copier.Copy(&rows, &points); err != nil {
			return 0, fmt.Errorf("failed to copy %s summary: %w", col, err)
		}
		for i := range rows {
			rows[i].MetricColumn = col
			if std := points[i].Std; !math.IsNaN(std) {
				rows[i].StdDev = &std
			}
		}
		exp.Generations = append(exp.Generations, rows...)
	}

	if result := s.DB.Create(exp); result.Error != nil {
		return 0, fmt.Errorf("failed to save experiment %q: %w", name, result.Error)
	}
	logger.WithField("stage", StageStore).
		WithField("experiment", exp.ID).
		WithField("rows", len(exp.Generations)).
		Debug("saved summary")
	return exp.ID, nil
}

// Load restores a stored summary.
func (s *SummaryStore) Load(id uint) (*Summary, error) {
	var exp Experiment
	result := s.DB.Preload("Generations", func(db *gorm.DB) *gorm.DB {
		return db.Order("generation asc")
	}).First(&exp, id)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load experiment %d: %w", id, result.Error)
	}

	byColumn := make(map[string][]GenerationSummary)
	for _, row := range exp.Generations {
		byColumn[row.MetricColumn] = append(byColumn[row.MetricColumn], row)
	}

	summary := &Summary{Runs: exp.Runs, Series: make(map[string]*SummarySeries, len(byColumn))}
	for col, rows := range byColumn {
		var points []SummaryPoint
		if err := copier.Copy(&points, &rows); err != nil {
			return nil, fmt.Errorf("failed to copy %s summary: %w", col, err)
		}
		for i := range points {
			points[i].Std = math.NaN()
			if rows[i].StdDev != nil {
				points[i].Std = *rows[i].StdDev
			}
		}
		series := SeriesFromPoints(col, points)
		summary.Series[col] = series
		if summary.Generations == nil {
			summary.Generations = series.Generations
		}
	}
	return summary, nil
}

// List returns stored experiments without their rows, newest first.
func (s *SummaryStore) List() ([]Experiment, error) {
	var exps []Experiment
	if result := s.DB.Order("id desc").Find(&exps); result.Error != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", result.Error)
	}
	return exps, nil
}

type PruneResult struct {
	TotalExperiments   int
	KeptExperiments    int
	DeletedExperiments int
	DeletedRows        int64
}

// Prune deletes every experiment except the newest keep, along with their
// rows. With dryRun set nothing is deleted and the result is a preview.
func (s *SummaryStore) Prune(keep int, dryRun bool) (*PruneResult, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	exps, err := s.List()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{TotalExperiments: len(exps)}
	if len(exps) <= keep {
		result.KeptExperiments = len(exps)
		return result, nil
	}
	result.KeptExperiments = keep

	var doomed []uint
	for _, exp := range exps[keep:] {
		doomed = append(doomed, exp.ID)
	}
	result.DeletedExperiments = len(doomed)

	if dryRun {
		if res := s.DB.Model(&GenerationSummary{}).Where("experiment_id IN ?", doomed).Count(&result.DeletedRows); res.Error != nil {
			return nil, fmt.Errorf("failed to count rows: %w", res.Error)
		}
		return result, nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("experiment_id IN ?", doomed).Delete(&GenerationSummary{})
		if res.Error != nil {
			return res.Error
		}
		result.DeletedRows = res.RowsAffected
		return tx.Delete(&Experiment{}, doomed).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prune experiments: %w", err)
	}
	logger.WithField("stage", StageStore).
		WithField("experiments", result.DeletedExperiments).
		WithField("rows", result.DeletedRows).
		Info("pruned summaries")
	return result, nil
}

func sortedKeys(m map[string]*SummarySeries) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
