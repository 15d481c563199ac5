// Package densityplot renders predicted electron-density profiles.
//
// Static formats (png, svg, pdf, jpg) are drawn with gonum/plot; html
// produces an interactive go-echarts page.
package densityplot

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cellscatter/internal/predictor"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatJPG  = "jpg"
	FormatHTML = "html"
)

// Figure size for static formats.
var (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// FormatFromPath returns the output format implied by a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case FormatPNG, FormatSVG, FormatPDF, FormatJPG, FormatHTML:
		return ext, nil
	case "jpeg":
		return FormatJPG, nil
	case "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported plot format %q", ext)
	}
}

// Render writes fig to w in the given format.
func Render(w io.Writer, fig predictor.Figure, format string) error {
	if len(fig.X) != len(fig.Y) {
		return fmt.Errorf("figure has %d x values and %d y values", len(fig.X), len(fig.Y))
	}
	switch format {
	case FormatHTML:
		return renderHTML(w, fig)
	case FormatPNG, FormatSVG, FormatPDF, FormatJPG:
		return renderImage(w, fig, format)
	default:
		return fmt.Errorf("unsupported plot format %q", format)
	}
}

func xys(fig predictor.Figure) plotter.XYs {
	pts := make(plotter.XYs, len(fig.X))
	for i := range fig.X {
		pts[i] = plotter.XY{X: fig.X[i], Y: fig.Y[i]}
	}
	return pts
}

// xRange orders the figure's x limits. A profile whose first position
// is larger than its last is drawn on an inverted axis so the limits
// keep their given order. ok is false when the limits are equal.
func xRange(fig predictor.Figure) (lo, hi float64, inverted, ok bool) {
	switch {
	case fig.XMin < fig.XMax:
		return fig.XMin, fig.XMax, false, true
	case fig.XMin > fig.XMax:
		return fig.XMax, fig.XMin, true, true
	default:
		return 0, 0, false, false
	}
}

func renderImage(w io.Writer, fig predictor.Figure, format string) error {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	line, err := plotter.NewLine(xys(fig))
	if err != nil {
		return fmt.Errorf("build density line: %w", err)
	}
	line.Color = color.RGBA{B: 255, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)

	// Add widens the axes to the data; pin x to the profile's end points.
	if lo, hi, inverted, ok := xRange(fig); ok {
		p.X.Min = lo
		p.X.Max = hi
		if inverted {
			p.X.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
		}
	}

	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s plot: %w", format, err)
	}
	return nil
}

func renderHTML(w io.Writer, fig predictor.Figure) error {
	data := make([]opts.LineData, len(fig.X))
	for i := range fig.X {
		data[i] = opts.LineData{Value: []interface{}{fig.X[i], fig.Y[i]}}
	}

	xAxis := opts.XAxis{Type: "value", Name: fig.XLabel, NameLocation: "middle", NameGap: 25}
	if lo, hi, inverted, ok := xRange(fig); ok {
		xAxis.Min = lo
		xAxis.Max = hi
		if inverted {
			xAxis.Inverse = opts.Bool(true)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fig.Title, Width: "900px", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: fig.YLabel, NameLocation: "middle", NameGap: 40}),
	)
	name := fig.Label
	if name == "" {
		name = "density"
	}
	line.AddSeries(name, data)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("render density chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
