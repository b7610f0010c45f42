package config

import (
	"io/ioutil"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"flvkit/internal/logging"
	"flvkit/pkg/flv"
)

type Config struct {
	Audio   bool     `yaml:"audio"`
	Video   bool     `yaml:"video"`
	Retain  []string `yaml:"retain"`
	Dir     string   `yaml:"dir"`
	Workers int      `yaml:"workers"`
	Quiet   bool     `yaml:"quiet"`

	Log    logging.LogConfig `yaml:"log"`
	Server ServerConfig      `yaml:"server"`
}

type ServerConfig struct {
	Listen       string  `yaml:"listen"`
	Mode         string  `yaml:"mode"` // gin mode: debug, release or test
	MaxBodySize  int64   `yaml:"max_body_size"`
	RateLimit    float64 `yaml:"rate_limit"` // requests per second
	Burst        int     `yaml:"burst"`
	CacheEntries int     `yaml:"cache_entries"`
}

func Default() *Config {
	return &Config{
		Audio:   true,
		Video:   true,
		Retain:  []string{"video"},
		Dir:     ".",
		Workers: 4,
		Log: logging.LogConfig{
			RotationTime: 24 * time.Hour,
			ReserveDays:  7,
			Level:        "info",
			Format:       "text",
			UseStderr:    true,
		},
		Server: ServerConfig{
			Listen:       ":6666",
			Mode:         "release",
			MaxBodySize:  64 << 20,
			RateLimit:    20,
			Burst:        40,
			CacheEntries: 128,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := c.RetainTypes(); err != nil {
		return err
	}
	if c.Log.ToFile() && c.Log.RotationTime <= 0 {
		return errors.Errorf("log.rotation_time must be positive, got %s", c.Log.RotationTime)
	}
	if c.Log.ReserveDays < 0 {
		return errors.Errorf("log.reserve_days must not be negative, got %d", c.Log.ReserveDays)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return errors.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Server.MaxBodySize <= 0 {
		return errors.Errorf("server.max_body_size must be positive, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimit <= 0 || c.Server.Burst < 1 {
		return errors.New("server.rate_limit and server.burst must be positive")
	}

	return nil
}

// RetainTypes maps Retain onto tag types, video when empty.
func (c *Config) RetainTypes() ([]flv.TagType, error) {
	return ParseTagTypes(c.Retain)
}

// ParseTagTypes accepts names like "video" or "audio,script".
func ParseTagTypes(names []string) ([]flv.TagType, error) {
	var types []flv.TagType
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}

			t, ok := flv.ParseTagType(part)
			if !ok {
				return nil, errors.Errorf("unknown tag type %q", part)
			}
			types = append(types, t)
		}
	}

	if len(types) == 0 {
		types = []flv.TagType{flv.TagTypeVideo}
	}

	return types, nil
}
