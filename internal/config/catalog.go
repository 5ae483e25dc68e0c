package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CostCenterSeed is one entry of the global cost center catalog.
type CostCenterSeed struct {
	Code string `mapstructure:"code"`
	Name string `mapstructure:"name"`
}

// LoadCostCenterCatalog reads the `cost_centers` list from a YAML file.
// A missing file yields the fallback catalog.
func LoadCostCenterCatalog(path string, fallback []CostCenterSeed) ([]CostCenterSeed, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fallback, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fallback, nil
		}
		return nil, fmt.Errorf("read cost center catalog: %w", err)
	}

	var seeds []CostCenterSeed
	if err := v.UnmarshalKey("cost_centers", &seeds); err != nil {
		return nil, fmt.Errorf("decode cost center catalog: %w", err)
	}
	for i, s := range seeds {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("cost center catalog entry %d has no name", i)
		}
	}
	if len(seeds) == 0 {
		return fallback, nil
	}
	return seeds, nil
}
