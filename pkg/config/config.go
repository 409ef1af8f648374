// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/primait/jwks-client/pkg/source"
)

// Config drives the example daemon. Durations are TOML strings in Go
// syntax ("24h", "500ms"); Validate parses and defaults them.
type Config struct {
	Client ClientConfig `toml:"client"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

type ClientConfig struct {
	JWKSURL        string `toml:"jwks_url"`
	TimeToLive     string `toml:"time_to_live"`
	ConnectTimeout string `toml:"connect_timeout"`
	Timeout        string `toml:"timeout"`

	ttl            time.Duration
	connectTimeout time.Duration
	timeout        time.Duration
}

type ServerConfig struct {
	ListenAddress string   `toml:"listen_address"`
	Audiences     []string `toml:"audiences"`
	CookieName    string   `toml:"cookie_name"`
}

type LogConfig struct {
	File string `toml:"file"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Client.JWKSURL == "" {
		return errors.New("client.jwks_url is required")
	}
	var err error
	if c.Client.ttl, err = durationOr(c.Client.TimeToLive, 24*time.Hour); err != nil {
		return fmt.Errorf("client.time_to_live: %w", err)
	}
	if c.Client.connectTimeout, err = durationOr(c.Client.ConnectTimeout, source.DefaultConnectTimeout); err != nil {
		return fmt.Errorf("client.connect_timeout: %w", err)
	}
	if c.Client.timeout, err = durationOr(c.Client.Timeout, source.DefaultTimeout); err != nil {
		return fmt.Errorf("client.timeout: %w", err)
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":4000"
	}
	if c.Log.File == "" {
		c.Log.File = "jwksd.log"
	}
	return nil
}

func (c ClientConfig) TimeToLiveDuration() time.Duration     { return c.ttl }
func (c ClientConfig) ConnectTimeoutDuration() time.Duration { return c.connectTimeout }
func (c ClientConfig) TimeoutDuration() time.Duration        { return c.timeout }

func durationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %q", s)
	}
	return d, nil
}
