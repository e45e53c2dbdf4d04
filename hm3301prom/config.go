package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"hm3301"
)

type Config struct {
	ReadInterval time.Duration  `yaml:"read_interval"`
	Retries      int            `yaml:"retries"`
	Sensors      []SensorConfig `yaml:"sensors"`
}

type SensorConfig struct {
	Label     string `yaml:"label"`
	Bus       string `yaml:"bus"`     // /dev/i2c-1, or periph bus name
	Periph    bool   `yaml:"periph"`  // open bus with periph.io
	Address   uint16 `yaml:"address"` // 0 = default 0x40
	Simulated bool   `yaml:"simulated"`
}

func Load(path string) (*Config, error) {
	byt, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config read")
	}
	return Parse(byt)
}

func Parse(byt []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(byt, cfg); err != nil {
		return nil, errors.Wrap(err, "config parse")
	}
	normalize(cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.ReadInterval == 0 {
		cfg.ReadInterval = 30 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	for i := range cfg.Sensors {
		if cfg.Sensors[i].Address == 0 {
			cfg.Sensors[i].Address = hm3301.HM3301DEFAULTADDR
		}
	}
}

// Validate checks configuration correctness. It does not mutate
func Validate(cfg *Config) error {
	if len(cfg.Sensors) == 0 {
		return fmt.Errorf("no sensors defined")
	}
	if cfg.ReadInterval < time.Second {
		return fmt.Errorf("read_interval %v too short, minimum 1s", cfg.ReadInterval)
	}
	if cfg.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %v", cfg.Retries)
	}

	labels := make(map[string]bool)
	// key = bus | address
	owners := make(map[string]string)
	for _, s := range cfg.Sensors {
		if s.Label == "" {
			return fmt.Errorf("sensor on bus %q has no label", s.Bus)
		}
		if labels[s.Label] {
			return fmt.Errorf("sensor label %q is used twice", s.Label)
		}
		labels[s.Label] = true

		if hm3301.HM3301MAXADDR < s.Address {
			return fmt.Errorf("sensor %q: address 0x%X is not 7bit", s.Label, s.Address)
		}
		if s.Simulated {
			continue
		}
		if s.Bus == "" && !s.Periph {
			return fmt.Errorf("sensor %q: bus is required", s.Label)
		}
		key := fmt.Sprintf("%v|%v|%v", s.Periph, s.Bus, s.Address)
		if other, used := owners[key]; used {
			return fmt.Errorf("sensor %q: bus %q address 0x%X already used by %q", s.Label, s.Bus, s.Address, other)
		}
		owners[key] = s.Label
	}
	return nil
}
