package diagram

const (
	DefaultFileCount  = 10
	DefaultFilePrefix = "generation_stats"
	DefaultFileExt    = ".csv"

	GenerationColumn = "Generation"
	MaxFitnessColumn = "MaxFitness"

	DefaultTitle  = "Experiment results: fitness over time"
	DefaultXLabel = "generation"
	DefaultYLabel = "fitness"

	DefaultChartWidth  = 1200
	DefaultChartHeight = 800

	DefaultStoreName = "fitness_summary.db"
)

// Line statistics a chart series can draw.
const (
	LineMean = "mean"
	LineMin  = "min"
	LineMax  = "max"
)

// Pipeline stage names, used in StageError and log fields.
const (
	StageLoad      = "load"
	StageIntersect = "intersect"
	StageAggregate = "aggregate"
	StageRender    = "render"
	StageStore     = "store"
)
