package testutil

import (
	"encoding/json"
	"testing"

	"github.com/banshee-data/cellscatter/internal/fsutil"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestCurve(t *testing.T) {
	t.Parallel()

	c := DefaultArtifacts().Curve()
	if len(c) != 4 || c[0] != 1 || c[3] != 4 {
		t.Errorf("unexpected curve %v", c)
	}
}

func TestWriteArtifacts(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	set := DefaultArtifacts()
	cfg := set.Write(t, mfs, "/models")

	if got := cfg.GetArtifactDir(); got != "/models" {
		t.Errorf("artifact dir = %q, want /models", got)
	}
	if got := cfg.GetDensityPoints(); got != set.Points {
		t.Errorf("density points = %d, want %d", got, set.Points)
	}

	for _, name := range []string{"thickness.json", "apl.json", "density_stats.json", "density_model.json"} {
		data, err := mfs.ReadFile(cfg.ResolvePath(name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Errorf("%s is not valid JSON: %v", name, err)
		}
	}

	var bundle map[string]any
	data, _ := mfs.ReadFile("/models/apl.json")
	_ = json.Unmarshal(data, &bundle)
	if bundle["apl_mean"] != 65.0 {
		t.Errorf("apl_mean = %v, want 65", bundle["apl_mean"])
	}
}
