// Package plot renders the distribution and correlation charts to PNG files.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/salesstat/internal/stats"
	"github.com/KaramelBytes/salesstat/internal/utils"
)

const (
	HistogramFile = "sales_distribution.png"
	HeatmapFile   = "correlation_heatmap.png"
)

// ErrTooFewColumns is returned when a heatmap has fewer than two columns.
var ErrTooFewColumns = errors.New("heatmap needs at least two numeric columns")

// Renderer writes charts into Dir.
type Renderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer with a 10x6 inch canvas.
func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir, Width: 10 * vg.Inch, Height: 6 * vg.Inch}
}

var (
	barColor  = color.RGBA{R: 76, G: 114, B: 176, A: 160}
	lineColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// Histogram draws the sales histogram with a kernel density curve scaled to
// bar counts and returns the written path.
func (r *Renderer) Histogram(xs []float64, label string) (string, error) {
	if len(xs) == 0 {
		return "", stats.ErrEmptySample
	}
	p := plot.New()
	p.Title.Text = "Sales Distribution"
	p.X.Label.Text = label
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid())

	h, err := plotter.NewHist(plotter.Values(xs), Bins(xs))
	if err != nil {
		return "", fmt.Errorf("histogram: %w", err)
	}
	h.FillColor = barColor
	h.LineStyle.Color = color.White
	p.Add(h)

	lo, hi := h.Bins[0].Min, h.Bins[len(h.Bins)-1].Max
	if hi > lo && len(xs) > 1 {
		kde := &mstats.KDE{Sample: mstats.Sample{Xs: xs}}
		scale := float64(len(xs)) * h.Width
		f := plotter.NewFunction(func(x float64) float64 { return scale * kde.PDF(x) })
		f.XMin, f.XMax = lo, hi
		f.Samples = 256
		f.Color = lineColor
		f.Width = vg.Points(2)
		p.Add(f)

		var peak float64
		for i := 0; i <= f.Samples; i++ {
			x := lo + (hi-lo)*float64(i)/float64(f.Samples)
			if y := f.F(x); !math.IsNaN(y) && y > peak {
				peak = y
			}
		}
		if peak*1.05 > p.Y.Max {
			p.Y.Max = peak * 1.05
		}
	}
	return r.save(p, HistogramFile)
}

// Heatmap draws the correlation matrix as an annotated blue-red grid with
// the first column at the top left. NaN cells are drawn neutral and
// labelled "nan".
func (r *Renderer) Heatmap(m stats.CorrMatrix) (string, error) {
	n := len(m.Columns)
	if n < 2 {
		return "", ErrTooFewColumns
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m.Values}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Correlation Heatmap"
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v := m.Values[row][col]
			s := "nan"
			if !math.IsNaN(v) {
				s = fmt.Sprintf("%.2f", v)
			}
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(n - 1 - row)})
			labels = append(labels, s)
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = text.XCenter
		lbl.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(lbl)

	xt := make([]plot.Tick, n)
	yt := make([]plot.Tick, n)
	for i, name := range m.Columns {
		xt[i] = plot.Tick{Value: float64(i), Label: name}
		yt[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xt)
	p.Y.Tick.Marker = plot.ConstantTicks(yt)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = text.XRight
	return r.save(p, HeatmapFile)
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create plot dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row r of the grid
// is matrix row n-1-r so the first column is drawn at the top.
type corrGrid struct{ m [][]float64 }

func (g corrGrid) Dims() (c, r int) { return len(g.m), len(g.m) }

func (g corrGrid) Z(c, r int) float64 {
	v := g.m[len(g.m)-1-r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }
