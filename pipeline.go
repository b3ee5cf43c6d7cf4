package diagram

import "time"

// BuildSummary loads the configured runs and aggregates the columns the
// chart needs. Errors are wrapped in a StageError naming the failed stage.
func BuildSummary(config *Config) (*Summary, error) {
	if config == nil {
		config = DefaultConfig()
	}
	start := time.Now()

	columns := config.Chart.Columns()
	runs, err := LoadRuns(config.Loader, columns...)
	if err != nil {
		return nil, stageError(StageLoad, err)
	}

	summary, err := Aggregate(runs, columns...)
	if err != nil {
		return nil, stageError(StageAggregate, err)
	}

	logger.WithField("runs", len(runs)).
		WithField("generations", len(summary.Generations)).
		WithField("elapsed", time.Since(start)).
		Info("summary ready")
	return summary, nil
}
