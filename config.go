package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config gathers the settings of every pipeline stage.
type Config struct {
	Loader *LoaderConfig `toml:"loader" yaml:"loader"`
	Chart  *ChartConfig  `toml:"chart" yaml:"chart"`
	Store  *StoreConfig  `toml:"store" yaml:"store"`
}

func DefaultConfig() *Config {
	return &Config{
		Loader: DefaultLoaderConfig(),
		Chart:  DefaultChartConfig(),
		Store:  DefaultStoreConfig(),
	}
}

// LoadConfig reads a TOML or YAML file (chosen by extension) over the
// defaults. Keys absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".toml", "":
		_, err = toml.Decode(string(data), config)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Loader == nil || c.Chart == nil || c.Store == nil {
		return fmt.Errorf("config sections loader, chart and store are required")
	}
	if c.Loader.FileCount < 1 {
		return fmt.Errorf("loader.file_count must be at least 1, got %d", c.Loader.FileCount)
	}
	if c.Loader.Prefix == "" {
		return fmt.Errorf("loader.prefix must be defined")
	}
	for i, s := range c.Chart.Series {
		switch s.Line {
		case "", LineMean, LineMin, LineMax:
		default:
			return fmt.Errorf("chart.series[%d]: unknown line statistic %q", i, s.Line)
		}
	}
	return nil
}
