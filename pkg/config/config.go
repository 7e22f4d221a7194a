package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// weightTolerance is the floating tolerance for the sum-to-1.0 invariant.
const weightTolerance = 1e-6

// Config holds all configuration options for pulse.
type Config struct {
	// Analysis window settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Health score weighting
	Health HealthConfig `koanf:"health"`

	// Churn prediction settings
	Churn ChurnConfig `koanf:"churn"`

	// Collaboration network thresholds
	Network NetworkConfig `koanf:"network"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls the metric window used for scoring.
type AnalysisConfig struct {
	WindowDays int `koanf:"window_days"`
}

// HealthConfig holds health-score dimension weights.
type HealthConfig struct {
	Weights HealthWeights `koanf:"weights"`
}

// HealthWeights are the six dimension weights. They must sum to 1.0.
type HealthWeights struct {
	Activity            float64 `koanf:"activity"`
	Diversity           float64 `koanf:"diversity"`
	ResponseTime        float64 `koanf:"response_time"`
	CodeQuality         float64 `koanf:"code_quality"`
	Documentation       float64 `koanf:"documentation"`
	CommunityAtmosphere float64 `koanf:"community_atmosphere"`
}

// Sum returns the total of all six weights.
func (w HealthWeights) Sum() float64 {
	return w.Activity + w.Diversity + w.ResponseTime + w.CodeQuality +
		w.Documentation + w.CommunityAtmosphere
}

// ChurnConfig controls churn prediction.
type ChurnConfig struct {
	WindowDays      int             `koanf:"window_days"`
	AlertThresholds AlertThresholds `koanf:"alert_thresholds"`
}

// AlertThresholds are the inclusive lower bounds of the alert ladder.
type AlertThresholds struct {
	Yellow float64 `koanf:"yellow"`
	Orange float64 `koanf:"orange"`
	Red    float64 `koanf:"red"`
}

// NetworkConfig holds collaboration-network thresholds.
type NetworkConfig struct {
	BridgeConstraintThreshold float64 `koanf:"bridge_constraint_threshold"`
	BusFactorThreshold        float64 `koanf:"bus_factor_threshold"`
	TopContributors           int     `koanf:"top_contributors"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			WindowDays: 90,
		},
		Health: HealthConfig{
			Weights: HealthWeights{
				Activity:            0.25,
				Diversity:           0.15,
				ResponseTime:        0.15,
				CodeQuality:         0.15,
				Documentation:       0.15,
				CommunityAtmosphere: 0.15,
			},
		},
		Churn: ChurnConfig{
			WindowDays: 90,
			AlertThresholds: AlertThresholds{
				Yellow: 0.3,
				Orange: 0.5,
				Red:    0.7,
			},
		},
		Network: NetworkConfig{
			BridgeConstraintThreshold: 0.5,
			BusFactorThreshold:        0.5,
			TopContributors:           10,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Validate checks invariant constraints. Violations are operator misuse
// and fail fast; they are never silently corrected.
func (c *Config) Validate() error {
	if c.Analysis.WindowDays <= 0 {
		return fmt.Errorf("analysis.window_days must be positive, got %d", c.Analysis.WindowDays)
	}
	if c.Churn.WindowDays <= 0 {
		return fmt.Errorf("churn.window_days must be positive, got %d", c.Churn.WindowDays)
	}
	if sum := c.Health.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("health.weights must sum to 1.0, got %.6f", sum)
	}
	t := c.Churn.AlertThresholds
	if !(t.Yellow > 0 && t.Yellow < t.Orange && t.Orange < t.Red && t.Red <= 1) {
		return fmt.Errorf("churn.alert_thresholds must be ascending within (0, 1], got %.2f/%.2f/%.2f",
			t.Yellow, t.Orange, t.Red)
	}
	if c.Network.BridgeConstraintThreshold <= 0 || c.Network.BridgeConstraintThreshold > 1 {
		return fmt.Errorf("network.bridge_constraint_threshold must be in (0, 1], got %.2f",
			c.Network.BridgeConstraintThreshold)
	}
	if c.Network.BusFactorThreshold <= 0 || c.Network.BusFactorThreshold > 1 {
		return fmt.Errorf("network.bus_factor_threshold must be in (0, 1], got %.2f",
			c.Network.BusFactorThreshold)
	}
	if c.Network.TopContributors < 0 {
		return fmt.Errorf("network.top_contributors must not be negative, got %d", c.Network.TopContributors)
	}
	return nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"pulse.toml",
		"pulse.yaml",
		"pulse.yml",
		"pulse.json",
		".pulse.toml",
		".pulse.yaml",
		".pulse.yml",
		".pulse.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}
