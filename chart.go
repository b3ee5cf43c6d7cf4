package diagram

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SeriesConfig describes one line of the chart. Line selects the statistic
// drawn (mean, min or max) of Column; the shaded band spans the line plus and
// minus one standard deviation of the same column.
type SeriesConfig struct {
	Name   string    `toml:"name" yaml:"name"`
	Column string    `toml:"column" yaml:"column"`
	Line   string    `toml:"line" yaml:"line"`
	Color  string    `toml:"color" yaml:"color"`
	Dash   []float64 `toml:"dash" yaml:"dash"`
	Dot    float64   `toml:"dot" yaml:"dot"`
	NoBand bool      `toml:"no_band" yaml:"no_band"`
}

type ChartConfig struct {
	Title  string         `toml:"title" yaml:"title"`
	XLabel string         `toml:"x_label" yaml:"x_label"`
	YLabel string         `toml:"y_label" yaml:"y_label"`
	Width  int            `toml:"width" yaml:"width"`
	Height int            `toml:"height" yaml:"height"`
	Legend bool           `toml:"legend" yaml:"legend"`
	Grid   bool           `toml:"grid" yaml:"grid"`
	Series []SeriesConfig `toml:"series" yaml:"series"`
}

// DefaultSeries reproduces the classic three-line fitness chart. All three
// lines are computed from MaxFitness; point Column at MinFitness or
// MeanFitness to plot those columns instead.
func DefaultSeries() []SeriesConfig {
	return []SeriesConfig{
		{Name: "Max Fitness", Column: MaxFitnessColumn, Line: LineMean, Color: "0074d9", Dot: 4},
		{Name: "Min Fitness", Column: MaxFitnessColumn, Line: LineMin, Color: "d9001b", Dash: []float64{6, 4}, Dot: 4},
		{Name: "Mean Fitness", Column: MaxFitnessColumn, Line: LineMean, Color: "2ecc40", Dash: []float64{8, 3, 2, 3}, Dot: 4},
	}
}

func DefaultChartConfig() *ChartConfig {
	return &ChartConfig{
		Title:  DefaultTitle,
		XLabel: DefaultXLabel,
		YLabel: DefaultYLabel,
		Width:  DefaultChartWidth,
		Height: DefaultChartHeight,
		Legend: true,
		Grid:   true,
		Series: DefaultSeries(),
	}
}

// Columns lists the distinct metric columns the chart needs, in series order.
func (c *ChartConfig) Columns() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range c.Series {
		col := s.Column
		if col == "" {
			col = MaxFitnessColumn
		}
		if !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}
	if len(out) == 0 {
		out = []string{MaxFitnessColumn}
	}
	return out
}

const bandAlpha = 51

var gridStyle = chart.Style{
	StrokeColor: drawing.ColorFromHex("dddddd"),
	StrokeWidth: 1.0,
}

// BuildChart lays out the summary as a go-chart chart: one band per series
// drawn first, then the lines on top.
func BuildChart(summary *Summary, config *ChartConfig) (chart.Chart, error) {
	if config == nil {
		config = DefaultChartConfig()
	}
	if summary == nil || len(summary.Generations) == 0 {
		return chart.Chart{}, ErrEmptyInput
	}
	seriesConfigs := config.Series
	if len(seriesConfigs) == 0 {
		seriesConfigs = DefaultSeries()
	}

	var bands, lines []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, sc := range seriesConfigs {
		col := sc.Column
		if col == "" {
			col = MaxFitnessColumn
		}
		src, err := summary.Column(col)
		if err != nil {
			return chart.Chart{}, err
		}
		ys, err := src.Stat(sc.Line)
		if err != nil {
			return chart.Chart{}, err
		}
		xs := toFloats(src.Generations)
		color := seriesColor(sc.Color)

		if !sc.NoBand {
			band := newBandSeries(sc.Name, xs, ys, src.Std, color.WithAlpha(bandAlpha))
			for i := range xs {
				_, lo, hi := band.GetBoundedValues(i)
				yMin, yMax = math.Min(yMin, lo), math.Max(yMax, hi)
			}
			bands = append(bands, band)
		}
		for _, y := range ys {
			yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
		}
		lines = append(lines, chart.ContinuousSeries{
			Name:    sc.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor:     color,
				StrokeWidth:     2,
				StrokeDashArray: sc.Dash,
				DotColor:        color,
				DotWidth:        sc.Dot,
			},
		})
	}

	xAxis := chart.XAxis{Name: config.XLabel}
	yAxis := chart.YAxis{Name: config.YLabel}
	if config.Grid {
		xAxis.GridMajorStyle = gridStyle
		yAxis.GridMajorStyle = gridStyle
	}
	// go-chart refuses zero-width ranges, which a single generation or a
	// flat series would otherwise produce.
	if g := summary.Generations; g[0] == g[len(g)-1] {
		xAxis.Range = &chart.ContinuousRange{Min: float64(g[0]) - 1, Max: float64(g[0]) + 1}
	}
	if yMin == yMax {
		pad := math.Max(math.Abs(yMin)*0.1, 1)
		yAxis.Range = &chart.ContinuousRange{Min: yMin - pad, Max: yMax + pad}
	}

	ch := chart.Chart{
		Title:      config.Title,
		Width:      config.Width,
		Height:     config.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     append(bands, lines...),
	}
	if config.Legend {
		// Bands are unlabeled; the legend only lists the lines.
		legendSource := ch
		legendSource.Series = lines
		ch.Elements = []chart.Renderable{chart.Legend(&legendSource)}
	}
	return ch, nil
}

// RenderPNG draws the summary chart as a PNG image.
func RenderPNG(w io.Writer, summary *Summary, config *ChartConfig) error {
	ch, err := BuildChart(summary, config)
	if err != nil {
		return err
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	logger.WithField("stage", StageRender).
		WithField("series", len(ch.Series)).
		Debug("rendered chart")
	return nil
}

func seriesColor(hex string) drawing.Color {
	if hex == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(hex)
}

func toFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// bandSeries is a shaded region between center-std and center+std.
type bandSeries struct {
	name   string
	xs     []float64
	center []float64
	std    []float64
	style  chart.Style
}

func newBandSeries(name string, xs, center, std []float64, fill drawing.Color) *bandSeries {
	return &bandSeries{
		name:   name,
		xs:     xs,
		center: center,
		std:    std,
		style: chart.Style{
			FillColor:   fill,
			StrokeColor: fill,
			StrokeWidth: 0,
		},
	}
}

func (b *bandSeries) GetName() string { return b.name + " band" }
func (b *bandSeries) GetStyle() chart.Style { return b.style }
func (b *bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b *bandSeries) Len() int { return len(b.xs) }

// GetBoundedValues returns x with the lower and upper band edges. An
// undefined deviation collapses the band onto the line.
func (b *bandSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	d := b.std[index]
	if math.IsNaN(d) {
		d = 0
	}
	return b.xs[index], b.center[index] - d, b.center[index] + d
}

func (b *bandSeries) Validate() error {
	if len(b.xs) == 0 {
		return fmt.Errorf("band series %q has no values", b.name)
	}
	if len(b.center) != len(b.xs) || len(b.std) != len(b.xs) {
		return fmt.Errorf("band series %q has mismatched lengths", b.name)
	}
	return nil
}

func (b *bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := b.style.InheritFrom(defaults)
	chart.Draw.BoundedSeries(r, canvasBox, xrange, yrange, style, b)
}
