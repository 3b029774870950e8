package datachat

import (
	"encoding/json"
	"fmt"
)

// ChartConfig is the validated structured value embedded in a chartjs
// fenced block: {"type":"bar","title":"...","labels":[...],"data":[...]}.
type ChartConfig struct {
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ParseChartConfig parses and validates a chart block's source text.
// Labels and data must be the same nonzero length.
func ParseChartConfig(source string) (ChartConfig, error) {
	var cfg ChartConfig
	if err := json.Unmarshal([]byte(source), &cfg); err != nil {
		return ChartConfig{}, fmt.Errorf("parse chart config: %w", err)
	}
	if cfg.Type == "" {
		return ChartConfig{}, fmt.Errorf("chart config missing type: %w", ErrValidation)
	}
	if len(cfg.Labels) == 0 {
		return ChartConfig{}, fmt.Errorf("chart config has no labels: %w", ErrValidation)
	}
	if len(cfg.Labels) != len(cfg.Data) {
		return ChartConfig{}, fmt.Errorf("chart config has %d labels but %d data points: %w",
			len(cfg.Labels), len(cfg.Data), ErrValidation)
	}
	return cfg, nil
}
