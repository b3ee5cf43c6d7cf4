package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MellKam/snake-evolution/diagram"
)

var (
	configPath string
	logLevel   string
	profileRun string

	dir     string
	prefix  string
	count   int
	workers int
	outPath string
	show    bool
	table   bool
	dbPath  string
	expName string
	fromDB  uint
	parity  bool
	minCol  string
	meanCol string

	keep   int
	dryRun bool

	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fitchart",
	Short: "Chart per-generation fitness across experiment runs",
	Long: `fitchart reads <prefix>_1.csv .. <prefix>_N.csv, keeps the generations
present in every run and plots the mean, min and spread of MaxFitness per
generation.

Without --out the chart opens in a window and the command returns once the
window is closed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = diagram.NewLogger(os.Stderr, logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		diagram.SetLogger(log)
		return nil
	},
	RunE: runChart,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiments stored in the summary database",
	RunE:  runList,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest stored experiments",
	RunE:  runPrune,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "TOML or YAML config file")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	pf.StringVar(&dbPath, "db", "", "SQLite file to store summaries in")

	f := rootCmd.Flags()
	f.StringVar(&dir, "dir", "", "Directory holding the run files")
	f.StringVar(&prefix, "prefix", "", "Run file prefix (default generation_stats)")
	f.IntVarP(&count, "count", "n", 0, "Number of run files (default 10)")
	f.IntVar(&workers, "workers", 0, "Files loaded concurrently")
	f.StringVarP(&outPath, "out", "o", "", "Write the chart to this PNG file")
	f.BoolVar(&show, "show", false, "Open the chart window even when --out is set")
	f.BoolVar(&table, "table", false, "Print the summary table to stdout")
	f.StringVar(&expName, "name", "", "Experiment name used with --db")
	f.UintVar(&fromDB, "from-db", 0, "Render a stored experiment instead of reading run files")
	f.BoolVar(&parity, "parity", true, "Source every series from MaxFitness")
	f.StringVar(&minCol, "min-column", "MinFitness", "Column of the Min Fitness series when --parity=false")
	f.StringVar(&meanCol, "mean-column", "MeanFitness", "Column of the Mean Fitness series when --parity=false")
	f.StringVar(&profileRun, "profile", "", "Profile the run (cpu|mem)")

	pruneCmd.Flags().IntVar(&keep, "keep", 10, "Number of newest experiments to keep")
	pruneCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would be deleted without deleting")

	rootCmd.AddCommand(listCmd, pruneCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.WithError(err).Error("fitchart failed")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*diagram.Config, error) {
	config := diagram.DefaultConfig()
	if configPath != "" {
		var err error
		if config, err = diagram.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		config.Loader.Dir = dir
	}
	if flags.Changed("prefix") {
		config.Loader.Prefix = prefix
	}
	if flags.Changed("count") {
		config.Loader.FileCount = count
	}
	if flags.Changed("workers") {
		config.Loader.Workers = workers
	}
	if !parity {
		series := diagram.DefaultSeries()
		series[1].Column = minCol
		series[2].Column = meanCol
		config.Chart.Series = series
	}
	return config, config.Validate()
}

func runChart(cmd *cobra.Command, args []string) error {
	switch profileRun {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileRun)
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var summary *diagram.Summary
	if fromDB != 0 {
		store, err := openStore(config)
		if err != nil {
			return err
		}
		defer store.Close()
		if summary, err = store.Load(fromDB); err != nil {
			return err
		}
	} else {
		log.Infof("Loading %d runs from %s", config.Loader.FileCount, config.Loader.Dir)
		if summary, err = diagram.BuildSummary(config); err != nil {
			return err
		}
		if dbPath != "" {
			if err := saveSummary(config, summary); err != nil {
				return err
			}
		}
	}

	if table {
		for _, col := range config.Chart.Columns() {
			series, err := summary.Column(col)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", col)
			if err := diagram.WriteTable(os.Stdout, series); err != nil {
				return err
			}
		}
	}

	var buf bytes.Buffer
	if err := diagram.RenderPNG(&buf, summary, config.Chart); err != nil {
		return &diagram.StageError{Stage: diagram.StageRender, Err: err}
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		log.Infof("Chart written to %s", outPath)
		if !show {
			return nil
		}
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode chart: %w", err)
	}
	showChart(config.Chart.Title, img, config.Chart.Width, config.Chart.Height)
	return nil
}

func openStore(config *diagram.Config) (*diagram.SummaryStore, error) {
	if dbPath != "" {
		config.Store.Path, config.Store.Name = splitPath(dbPath)
	}
	return diagram.NewSummaryStore(config.Store)
}

func saveSummary(config *diagram.Config, summary *diagram.Summary) error {
	store, err := openStore(config)
	if err != nil {
		return err
	}
	defer store.Close()

	name := expName
	if name == "" {
		name = config.Loader.Prefix
	}
	id, err := store.Save(name, summary)
	if err != nil {
		return err
	}
	log.Infof("Stored summary as experiment %d (%s)", id, name)
	return nil
}

// storeFromFlags opens the summary store named by --config and --db.
func storeFromFlags() (*diagram.SummaryStore, error) {
	config := diagram.DefaultConfig()
	if configPath != "" {
		var err error
		if config, err = diagram.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	return openStore(config)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer store.Close()

	exps, err := store.List()
	if err != nil {
		return err
	}
	for _, e := range exps {
		fmt.Printf("%4d  %-24s runs=%d  %s\n", e.ID, e.Name, e.Runs, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	store, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.Prune(keep, dryRun)
	if err != nil {
		return err
	}
	fmt.Printf("Prune %s:\n", map[bool]string{true: "(dry run)", false: "complete"}[dryRun])
	fmt.Printf("  Total experiments:    %d\n", result.TotalExperiments)
	fmt.Printf("  Experiments kept:     %d\n", result.KeptExperiments)
	fmt.Printf("  Experiments deleted:  %d\n", result.DeletedExperiments)
	fmt.Printf("  Rows deleted:         %d\n", result.DeletedRows)
	return nil
}

func splitPath(p string) (dir, name string) {
	dir, name = filepath.Split(p)
	if dir == "" {
		dir = "."
	}
	return dir, name
}
