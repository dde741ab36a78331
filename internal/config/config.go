// Package config loads handoff run settings from a YAML file and the
// environment and turns them into handoff options.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/handoff"
)

// EnvPrefix prefixes every environment override, e.g. HANDOFF_CAPACITY.
const EnvPrefix = "HANDOFF"

// Duration is a time.Duration in YAML and the environment. It accepts a Go
// duration string ("15ms") or a bare integer meaning milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// File is the on-disk run configuration. Missing keys keep their defaults.
type File struct {
	Producers        int      `yaml:"producers"`
	Consumers        int      `yaml:"consumers"`
	Capacity         int      `yaml:"capacity"`
	ItemsPerProducer int      `yaml:"items_per_producer"`
	ProducerDelay    Duration `yaml:"producer_delay"`
	ConsumerDelay    Duration `yaml:"consumer_delay"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// MetricsAddr, when set, is where the command serves /metrics.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns a File holding the library defaults.
func Default() File {
	return File{
		Producers:        handoff.DefaultProducers,
		Consumers:        handoff.DefaultConsumers,
		Capacity:         handoff.DefaultCapacity,
		ItemsPerProducer: handoff.DefaultItemsPerProducer,
		ProducerDelay:    Duration(handoff.DefaultProducerDelay),
		ConsumerDelay:    Duration(handoff.DefaultConsumerDelay),
		LogLevel:         "info",
	}
}

// Load reads path over the defaults and then applies HANDOFF_* environment
// overrides. An empty path skips the file.
func Load(path string) (File, error) {
	f := Default()
	if path != "" {
		// #nosec G304 -- the path comes from the operator's command line.
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}
	if err := f.ApplyEnv(EnvPrefix); err != nil {
		return File{}, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return f, nil
}

// ApplyEnv overrides fields from PREFIX_<YAML KEY> variables, e.g.
// HANDOFF_ITEMS_PER_PRODUCER, in declaration order. Empty variables are ignored.
func (f *File) ApplyEnv(prefix string) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"producers", &f.Producers},
		{"consumers", &f.Consumers},
		{"capacity", &f.Capacity},
		{"items_per_producer", &f.ItemsPerProducer},
	}
	for _, field := range ints {
		v, ok := lookupEnv(prefix, field.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer value: %s", envKey(prefix, field.key), v)
		}
		*field.dst = n
	}

	durations := []struct {
		key string
		dst *Duration
	}{
		{"producer_delay", &f.ProducerDelay},
		{"consumer_delay", &f.ConsumerDelay},
	}
	for _, field := range durations {
		v, ok := lookupEnv(prefix, field.key)
		if !ok {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration value: %s", envKey(prefix, field.key), v)
		}
		*field.dst = Duration(d)
	}

	if v, ok := lookupEnv(prefix, "log_level"); ok {
		f.LogLevel = v
	}
	if v, ok := lookupEnv(prefix, "metrics_addr"); ok {
		f.MetricsAddr = v
	}
	return nil
}

func envKey(prefix, key string) string {
	return prefix + "_" + strings.ToUpper(key)
}

func lookupEnv(prefix, key string) (string, bool) {
	v := os.Getenv(envKey(prefix, key))
	return v, v != ""
}

// Level parses LogLevel.
func (f File) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(f.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Options converts the run settings into handoff options. Values are checked
// by handoff.Run, not here.
func (f File) Options() []handoff.Option {
	return []handoff.Option{
		handoff.WithProducers(f.Producers),
		handoff.WithConsumers(f.Consumers),
		handoff.WithCapacity(f.Capacity),
		handoff.WithItemsPerProducer(f.ItemsPerProducer),
		handoff.WithPacing(time.Duration(f.ProducerDelay), time.Duration(f.ConsumerDelay)),
	}
}
