// Package runconfig loads and saves the YAML file that drives one
// conflate run: which datasets to read, where to write the results, and
// which matching thresholds to use in place of the engine defaults.
package runconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hotosm/conflate/conflate"
)

// ThresholdConfig overrides conflate.Config's tunables. Any field left
// at its zero value falls back to conflate.DefaultConfig's value; see
// ToConflateConfig.
type ThresholdConfig struct {
	PointDistance  float64 `yaml:"point_distance"`
	LineDistance   float64 `yaml:"line_distance"`
	Angle          float64 `yaml:"angle"`
	Slope          float64 `yaml:"slope"`
	FuzzRatio      int     `yaml:"fuzz_ratio"`
	MaxLengthDelta int     `yaml:"max_length_delta"`
	MaxCandidates  int     `yaml:"max_candidates"`
}

// OutputConfig names the GeoJSON files a run writes its results to.
type OutputConfig struct {
	Updated string `yaml:"updated"`
	New     string `yaml:"new"`
}

// RunConfig is the top-level shape of a conflate run's YAML file.
type RunConfig struct {
	Primary           string          `yaml:"primary"`
	Secondary         string          `yaml:"secondary"`
	Output            OutputConfig    `yaml:"output"`
	Thresholds        ThresholdConfig `yaml:"thresholds"`
	Workers           int             `yaml:"workers"`
	ReferenceLatitude float64         `yaml:"reference_latitude"`
	EmitUnchanged     bool            `yaml:"emit_unchanged"`
}

// LoadRunConfig reads and validates a RunConfig from path.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if cfg.Primary == "" {
		return nil, fmt.Errorf("primary is required")
	}
	if cfg.Secondary == "" {
		return nil, fmt.Errorf("secondary is required")
	}
	if cfg.Output.Updated == "" {
		cfg.Output.Updated = "updated.geojson"
	}
	if cfg.Output.New == "" {
		cfg.Output.New = "new.geojson"
	}

	return &cfg, nil
}

// SaveRunConfig writes cfg to path as YAML.
func SaveRunConfig(path string, cfg *RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ToConflateConfig builds a conflate.Config from the run config's
// threshold overrides, starting from conflate.DefaultConfig and
// replacing only the fields the YAML file set to a nonzero value. A
// run config that specifies no thresholds at all reproduces the
// engine's reference behavior exactly.
func (c *RunConfig) ToConflateConfig() conflate.Config {
	cfg := conflate.DefaultConfig()

	if c.Thresholds.PointDistance != 0 {
		cfg.PointDistThreshold = c.Thresholds.PointDistance
	}
	if c.Thresholds.LineDistance != 0 {
		cfg.LineDistThreshold = c.Thresholds.LineDistance
	}
	if c.Thresholds.Angle != 0 {
		cfg.AngleThreshold = c.Thresholds.Angle
	}
	if c.Thresholds.Slope != 0 {
		cfg.SlopeThreshold = c.Thresholds.Slope
	}
	if c.Thresholds.FuzzRatio != 0 {
		cfg.FuzzRatioThreshold = c.Thresholds.FuzzRatio
	}
	if c.Thresholds.MaxLengthDelta != 0 {
		cfg.MaxLengthDelta = c.Thresholds.MaxLengthDelta
	}
	if c.Thresholds.MaxCandidates != 0 {
		cfg.MaxCandidates = c.Thresholds.MaxCandidates
	}

	cfg.Workers = c.Workers
	cfg.ReferenceLatitude = c.ReferenceLatitude
	cfg.EmitUnchanged = c.EmitUnchanged

	return cfg
}
