package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nightness/tensorcalc/internal/expr"
)

const (
	DefaultDataDir   = "runs"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

type Config struct {
	Workers   int          `yaml:"workers"`
	Sampling  expr.Sampler `yaml:"sampling"`
	Log       LogConfig    `yaml:"log"`
	DataDir   string       `yaml:"data_dir"`
	Functions []string     `yaml:"functions,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig uses every CPU and the default zero-test sampler.
func DefaultConfig() *Config {
	return &Config{
		Workers:  0,
		Sampling: expr.DefaultSampler(),
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults. Missing keys keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Parser returns an expression parser that accepts the configured
// undefined functions.
func (c *Config) Parser() *expr.Parser {
	return expr.NewParser(expr.WithFunctions(c.Functions...))
}
