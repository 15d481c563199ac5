package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/cellscatter/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical predictor defaults file.
const DefaultConfigPath = "config/predictor.defaults.json"

// Default values used when a field is omitted.
const (
	DefaultArtifactDir     = "artifacts"
	DefaultThicknessBundle = "thickness.json"
	DefaultAPLBundle       = "apl.json"
	DefaultDensityStats    = "density_stats.json"
	DefaultDensityModel    = "density_model.json"
	DefaultDensityPoints   = 200
	// DefaultDensityOffset is the instrument offset added to every
	// denormalized density value, in e/nm³.
	DefaultDensityOffset = 333.3
)

// DefaultAlphas are the miscoverage rates reported for the scalar
// targets: 50%, 75% and 95% prediction intervals.
var DefaultAlphas = []float64{0.5, 0.25, 0.05}

// PredictorConfig locates the pretrained artifacts and holds the
// constants the predictor applies around them. Nil fields fall back to
// the defaults above through the Get* accessors, so partial files are
// safe.
type PredictorConfig struct {
	// ArtifactDir is the directory artifact file names are resolved
	// against. Absolute file names ignore it.
	ArtifactDir *string `json:"artifact_dir,omitempty"`

	ThicknessBundle *string `json:"thickness_bundle,omitempty"`
	APLBundle       *string `json:"apl_bundle,omitempty"`
	DensityStats    *string `json:"density_stats,omitempty"`
	DensityModel    *string `json:"density_model,omitempty"`

	DensityPoints *int     `json:"density_points,omitempty"`
	DensityOffset *float64 `json:"density_offset,omitempty"`

	Alphas []float64 `json:"alphas,omitempty"`
}

func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// EmptyPredictorConfig returns a PredictorConfig with every field unset.
func EmptyPredictorConfig() *PredictorConfig {
	return &PredictorConfig{}
}

// DefaultPredictorConfig returns a PredictorConfig with every field set
// to its default value.
func DefaultPredictorConfig() *PredictorConfig {
	return &PredictorConfig{
		ArtifactDir:     ptrString(DefaultArtifactDir),
		ThicknessBundle: ptrString(DefaultThicknessBundle),
		APLBundle:       ptrString(DefaultAPLBundle),
		DensityStats:    ptrString(DefaultDensityStats),
		DensityModel:    ptrString(DefaultDensityModel),
		DensityPoints:   ptrInt(DefaultDensityPoints),
		DensityOffset:   ptrFloat64(DefaultDensityOffset),
		Alphas:          append([]float64(nil), DefaultAlphas...),
	}
}

// MaxConfigSize caps the size of a config file.
const MaxConfigSize = 1 * 1024 * 1024 // 1MB

// LoadPredictorConfig loads a PredictorConfig from a JSON file on fsys.
// The file must have a .json extension and be under MaxConfigSize.
func LoadPredictorConfig(fsys fsutil.FileSystem, path string) (*PredictorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := fsutil.ReadFileLimit(fsys, cleanPath, MaxConfigSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPredictorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PredictorConfig) Validate() error {
	names := map[string]*string{
		"thickness_bundle": c.ThicknessBundle,
		"apl_bundle":       c.APLBundle,
		"density_stats":    c.DensityStats,
		"density_model":    c.DensityModel,
	}
	for key, v := range names {
		if v != nil && *v == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}

	if c.DensityPoints != nil && *c.DensityPoints <= 0 {
		return fmt.Errorf("density_points must be positive, got %d", *c.DensityPoints)
	}

	for _, a := range c.Alphas {
		if a <= 0 || a >= 1 {
			return fmt.Errorf("alphas must be in (0, 1), got %v", a)
		}
	}

	return nil
}

// GetArtifactDir returns the artifact_dir value or the default.
func (c *PredictorConfig) GetArtifactDir() string {
	if c.ArtifactDir == nil || *c.ArtifactDir == "" {
		return DefaultArtifactDir
	}
	return *c.ArtifactDir
}

// GetThicknessBundle returns the thickness_bundle value or the default.
func (c *PredictorConfig) GetThicknessBundle() string {
	if c.ThicknessBundle == nil {
		return DefaultThicknessBundle
	}
	return *c.ThicknessBundle
}

// GetAPLBundle returns the apl_bundle value or the default.
func (c *PredictorConfig) GetAPLBundle() string {
	if c.APLBundle == nil {
		return DefaultAPLBundle
	}
	return *c.APLBundle
}

// GetDensityStats returns the density_stats value or the default.
func (c *PredictorConfig) GetDensityStats() string {
	if c.DensityStats == nil {
		return DefaultDensityStats
	}
	return *c.DensityStats
}

// GetDensityModel returns the density_model value or the default.
func (c *PredictorConfig) GetDensityModel() string {
	if c.DensityModel == nil {
		return DefaultDensityModel
	}
	return *c.DensityModel
}

// GetDensityPoints returns the density_points value or the default.
func (c *PredictorConfig) GetDensityPoints() int {
	if c.DensityPoints == nil {
		return DefaultDensityPoints
	}
	return *c.DensityPoints
}

// GetDensityOffset returns the density_offset value or the default.
func (c *PredictorConfig) GetDensityOffset() float64 {
	if c.DensityOffset == nil {
		return DefaultDensityOffset
	}
	return *c.DensityOffset
}

// GetAlphas returns a copy of alphas, or the defaults when unset.
func (c *PredictorConfig) GetAlphas() []float64 {
	if len(c.Alphas) == 0 {
		return append([]float64(nil), DefaultAlphas...)
	}
	return append([]float64(nil), c.Alphas...)
}

// ResolvePath joins name onto the artifact directory unless name is
// already absolute.
func (c *PredictorConfig) ResolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.GetArtifactDir(), name)
}
