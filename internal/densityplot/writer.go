package densityplot

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/cellscatter/internal/fsutil"
	"github.com/banshee-data/cellscatter/internal/monitoring"
	"github.com/banshee-data/cellscatter/internal/predictor"
)

// FileWriter renders every figure to one path, overwriting it. The
// format follows the path's extension.
type FileWriter struct {
	FS   fsutil.FileSystem
	Path string
}

// Plot implements predictor.Plotter.
func (fw FileWriter) Plot(fig predictor.Figure) error {
	format, err := FormatFromPath(fw.Path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(fw.Path); dir != "." {
		if err := fw.FS.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create plot dir: %w", err)
		}
	}
	return writeFile(fw.FS, fw.Path, fig, format)
}

// DirWriter renders each figure to its own file in Dir, named after the
// figure's label or, when unlabeled, a random UUID.
type DirWriter struct {
	FS     fsutil.FileSystem
	Dir    string
	Format string // defaults to png
}

// Plot implements predictor.Plotter.
func (dw DirWriter) Plot(fig predictor.Figure) error {
	_, err := dw.write(fig)
	return err
}

// write renders fig and returns the path written.
func (dw DirWriter) write(fig predictor.Figure) (string, error) {
	format := dw.Format
	if format == "" {
		format = FormatPNG
	}
	if err := dw.FS.MkdirAll(dw.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plot dir: %w", err)
	}

	name := fileStem(fig.Label)
	if name == "" {
		name = uuid.NewString()
	}
	path := filepath.Join(dw.Dir, name+"."+format)
	return path, writeFile(dw.FS, path, fig, format)
}

func writeFile(fsys fsutil.FileSystem, path string, fig predictor.Figure, format string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if err := Render(f, fig, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close plot file: %w", err)
	}
	monitoring.Logf("wrote density plot %s", path)
	return nil
}

// fileStem turns a label into a safe file name.
func fileStem(label string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
