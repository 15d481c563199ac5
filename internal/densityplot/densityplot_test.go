package densityplot

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cellscatter/internal/fsutil"
	"github.com/banshee-data/cellscatter/internal/monitoring"
	"github.com/banshee-data/cellscatter/internal/predictor"
)

func testFigure(label string) predictor.Figure {
	points := make([]predictor.Point, 50)
	for i := range points {
		x := -3 + 6*float64(i)/49
		points[i] = predictor.Point{X: x, Y: 333.3 + 100/(1+x*x)}
	}
	return predictor.DensityFigure(points, label)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out/density.png", FormatPNG, false},
		{"density.SVG", FormatSVG, false},
		{"density.pdf", FormatPDF, false},
		{"density.jpeg", FormatJPG, false},
		{"density.htm", FormatHTML, false},
		{"density.html", FormatHTML, false},
		{"density.gif", "", true},
		{"density", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testFigure("DOPC"), FormatPNG))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testFigure("DOPC"), FormatSVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderFlatProfile(t *testing.T) {
	// All-zero positions give an empty x range; rendering must still work.
	points := make([]predictor.Point, 10)
	for i := range points {
		points[i] = predictor.Point{X: 0, Y: 334.3}
	}
	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, predictor.DensityFigure(points, ""), FormatPNG))
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testFigure("DOPC"), FormatHTML))

	html := buf.String()
	assert.Contains(t, html, "Predicted density of DOPC")
	assert.Contains(t, html, "echarts")
}

func descendingFigure() predictor.Figure {
	points := make([]predictor.Point, 50)
	for i := range points {
		x := 3 - 6*float64(i)/49
		points[i] = predictor.Point{X: x, Y: 333.3 + 100/(1+x*x)}
	}
	return predictor.DensityFigure(points, "reversed")
}

func TestXRange(t *testing.T) {
	tests := []struct {
		name               string
		min, max           float64
		lo, hi             float64
		inverted, rangeSet bool
	}{
		{"ascending", -3, 3, -3, 3, false, true},
		{"descending", 3, -3, -3, 3, true, true},
		{"flat", 0, 0, 0, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, inverted, ok := xRange(predictor.Figure{XMin: tt.min, XMax: tt.max})
			assert.Equal(t, tt.rangeSet, ok)
			assert.Equal(t, tt.inverted, inverted)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestRenderDescendingProfile(t *testing.T) {
	fig := descendingFigure()
	require.Equal(t, 3.0, fig.XMin)
	require.Equal(t, -3.0, fig.XMax)

	var img bytes.Buffer
	require.NoError(t, Render(&img, fig, FormatPNG))
	_, err := png.Decode(&img)
	require.NoError(t, err)

	var html bytes.Buffer
	require.NoError(t, Render(&html, fig, FormatHTML))
	assert.Contains(t, html.String(), `"inverse":true`)

	html.Reset()
	require.NoError(t, Render(&html, testFigure("ascending"), FormatHTML))
	assert.NotContains(t, html.String(), `"inverse":true`)
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, testFigure(""), "gif"))

	bad := predictor.Figure{X: []float64{1, 2}, Y: []float64{1}}
	assert.Error(t, Render(&buf, bad, FormatPNG))
}

func TestFileWriter(t *testing.T) {
	restore := monitoring.Redirect(nil)
	defer restore()

	mfs := fsutil.NewMemoryFileSystem()
	fw := FileWriter{FS: mfs, Path: "/plots/density.html"}
	require.NoError(t, fw.Plot(testFigure("DPPC")))

	data, err := mfs.ReadFile("/plots/density.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Predicted density of DPPC")

	bad := FileWriter{FS: mfs, Path: "/plots/density.bmp"}
	assert.Error(t, bad.Plot(testFigure("")))
}

func TestDirWriter(t *testing.T) {
	restore := monitoring.Redirect(nil)
	defer restore()

	mfs := fsutil.NewMemoryFileSystem()
	dw := DirWriter{FS: mfs, Dir: "/plots/run"}

	t.Run("labelled figures use the label", func(t *testing.T) {
		path, err := dw.write(testFigure("POPC 310K"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/plots/run", "POPC_310K.png"), path)
		assert.True(t, mfs.Exists(path))
		assert.True(t, mfs.Exists("/plots/run"))
	})

	t.Run("unlabelled figures get a uuid", func(t *testing.T) {
		path, err := dw.write(testFigure(""))
		require.NoError(t, err)
		stem := strings.TrimSuffix(filepath.Base(path), ".png")
		_, err = uuid.Parse(stem)
		assert.NoError(t, err, "expected uuid file name, got %s", path)
	})

	t.Run("format override", func(t *testing.T) {
		svg := DirWriter{FS: mfs, Dir: "/plots/svg", Format: FormatSVG}
		require.NoError(t, svg.Plot(testFigure("x")))
		assert.True(t, mfs.Exists("/plots/svg/x.svg"))
	})
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "DOPC_30C", fileStem(" DOPC/30C "))
	assert.Equal(t, "a.b-c_d", fileStem("a.b-c_d"))
	assert.Equal(t, "", fileStem(".."))
}
