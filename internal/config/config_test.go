package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultsLoad(t *testing.T) {
	v := viper.New()
	if err := Prepare(v, ""); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Default()
	if cfg.Buffer != want.Buffer || cfg.Load != want.Load || cfg.Logging != want.Logging || cfg.Metrics != want.Metrics {
		t.Errorf("expected defaults %+v, got %+v", want, cfg)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bufstress.yaml")
	data := `buffer:
  capacity: 64
load:
  producers: 2
  special_every: 5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v := viper.New()
	if err := Prepare(v, path); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Buffer.Capacity != 64 || cfg.Load.Producers != 2 || cfg.Load.SpecialEvery != 5 || cfg.Logging.Level != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Load.Consumers != Default().Load.Consumers {
		t.Errorf("unset key should keep its default, got %d", cfg.Load.Consumers)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bufstress.yaml")
	if err := os.WriteFile(path, []byte("load:\n  consumers: 2\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("BUFSTRESS_LOAD_CONSUMERS", "7")

	v := viper.New()
	if err := Prepare(v, path); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Load.Consumers != 7 {
		t.Errorf("expected env to win, got %d", cfg.Load.Consumers)
	}
}

func TestMissingFileFails(t *testing.T) {
	v := viper.New()
	if err := Prepare(v, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if errs := Default().Validate(); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		cfg := Default()
		cfg.Buffer.Capacity = 4
		cfg.Load.Consumers = 0
		cfg.Load.PayloadSize = 10
		cfg.Load.SpecialEvery = 3
		cfg.Logging.Level = "loud"

		errs := cfg.Validate()
		if len(errs) != 4 {
			t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
		}
		joined := ""
		for _, e := range errs {
			joined += e.Error() + "\n"
		}
		for _, key := range []string{"load.consumers", "load.payload_size", "sentinel", "logging.level"} {
			if !strings.Contains(joined, key) {
				t.Errorf("missing error mentioning %q in:\n%s", key, joined)
			}
		}
	})

	t.Run("load rejects invalid config", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("buffer.capacity", 0)
		if _, err := Load(v); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestTimeout(t *testing.T) {
	c := LoadConfig{TimeoutSeconds: 3}
	if got := c.Timeout().Seconds(); got != 3 {
		t.Errorf("expected 3s, got %v", got)
	}
}
