package handoff

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("validateConfig returned error for defaults: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Producers != 3 {
		t.Fatalf("Producers default = %d; want 3", cfg.Producers)
	}
	if cfg.Consumers != 2 {
		t.Fatalf("Consumers default = %d; want 2", cfg.Consumers)
	}
	if cfg.Capacity != 10 {
		t.Fatalf("Capacity default = %d; want 10", cfg.Capacity)
	}
	if cfg.ItemsPerProducer != 50 {
		t.Fatalf("ItemsPerProducer default = %d; want 50", cfg.ItemsPerProducer)
	}
	if cfg.ProducerDelay != 10*time.Millisecond {
		t.Fatalf("ProducerDelay default = %s; want 10ms", cfg.ProducerDelay)
	}
	if cfg.ConsumerDelay != 20*time.Millisecond {
		t.Fatalf("ConsumerDelay default = %s; want 20ms", cfg.ConsumerDelay)
	}
	if cfg.Logger == nil || cfg.Metrics == nil {
		t.Fatalf("Logger and Metrics must default to non-nil values")
	}
}

func TestValidateConfig_FillsNilCollaborators(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logger = nil
	cfg.Metrics = nil
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logger == nil || cfg.Metrics == nil {
		t.Fatalf("validateConfig left a nil logger or metrics provider")
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config)
	}{
		{"zero producers", func(c *config) { c.Producers = 0 }},
		{"negative consumers", func(c *config) { c.Consumers = -2 }},
		{"zero capacity", func(c *config) { c.Capacity = 0 }},
		{"zero items", func(c *config) { c.ItemsPerProducer = 0 }},
		{"negative producer delay", func(c *config) { c.ProducerDelay = -time.Millisecond }},
		{"negative consumer delay", func(c *config) { c.ConsumerDelay = -time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := validateConfig(&cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("validateConfig() = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestBuildConfig_Options(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	cfg, err := buildConfig([]Option{
		WithProducers(5),
		WithConsumers(4),
		WithCapacity(1),
		WithItemsPerProducer(7),
		WithPacing(0, time.Millisecond),
		WithLogger(logger),
		WithHandler(func(context.Context, Item) {}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Producers != 5 || cfg.Consumers != 4 || cfg.Capacity != 1 || cfg.ItemsPerProducer != 7 {
		t.Fatalf("options not applied: %+v", cfg)
	}
	if cfg.ProducerDelay != 0 || cfg.ConsumerDelay != time.Millisecond {
		t.Fatalf("pacing not applied: producer=%s consumer=%s", cfg.ProducerDelay, cfg.ConsumerDelay)
	}
	if cfg.Logger != logger {
		t.Fatalf("logger not applied")
	}
	if cfg.Handler == nil {
		t.Fatalf("handler not applied")
	}
}

func TestBuildConfig_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"producers", WithProducers(0)},
		{"consumers", WithConsumers(0)},
		{"capacity", WithCapacity(-1)},
		{"items", WithItemsPerProducer(0)},
		{"pacing", WithPacing(-time.Second, 0)},
		{"nil option", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildConfig([]Option{tt.opt}); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("buildConfig() = %v; want ErrInvalidConfig", err)
			}
		})
	}
}
