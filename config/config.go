package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

const (
	DefaultTick           = 10 * time.Millisecond
	DefaultRedrawInterval = 50 * time.Millisecond
	DefaultFetchTimeout   = 20 * time.Second
	DefaultQueueSize      = 64
	DefaultUserAgent      = "feedkiosk"
)

var (
	ErrNoSources     = errors.New("no sources configured")
	ErrInvalidSource = errors.New("invalid source")
)

// Duration wraps time.Duration so it can be written as "10s" in TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// TomlFetch holds settings for the fetch client
type TomlFetch struct {
	Timeout   Duration `toml:"timeout,omitempty"`
	UserAgent string   `toml:"user_agent,omitempty"`
	QueueSize int      `toml:"queue_size,omitzero"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Tick           Duration          `toml:"tick,omitempty"`
	RedrawInterval Duration          `toml:"redraw_interval,omitempty"`
	Fetch          TomlFetch         `toml:"fetch,omitempty"`
	Sources        map[string]string `toml:"sources"`
}

// DefaultPath returns the config location under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "feedkiosk", "config.toml")
}

// Read decodes the file at path as written, without defaults or validation
func Read(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(string(data))
}

func LoadConfig(path string) (*TomlConfig, error) {
	config, err := Read(path)
	if err != nil {
		return nil, err
	}

	return prepare(config)
}

func ParseConfig(data string) (*TomlConfig, error) {
	config, err := decode(data)
	if err != nil {
		return nil, err
	}

	return prepare(config)
}

func decode(data string) (*TomlConfig, error) {
	var config TomlConfig
	if _, err := toml.Decode(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Sources == nil {
		config.Sources = map[string]string{}
	}
	return &config, nil
}

func prepare(config *TomlConfig) (*TomlConfig, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *TomlConfig) applyDefaults() {
	if c.Tick.Duration <= 0 {
		c.Tick.Duration = DefaultTick
	}
	if c.RedrawInterval.Duration <= 0 {
		c.RedrawInterval.Duration = DefaultRedrawInterval
	}
	if c.Fetch.Timeout.Duration <= 0 {
		c.Fetch.Timeout.Duration = DefaultFetchTimeout
	}
	if c.Fetch.QueueSize <= 0 {
		c.Fetch.QueueSize = DefaultQueueSize
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Sources == nil {
		c.Sources = map[string]string{}
	}
}

// Validate checks that every source has a name and an absolute http(s) URI
func (c *TomlConfig) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for name, uri := range c.Sources {
		if err := ValidateSource(name, uri); err != nil {
			return err
		}
	}
	return nil
}

func ValidateSource(name, uri string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSource)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSource, name, err)
	}
	if !lo.Contains([]string{"http", "https"}, u.Scheme) || u.Host == "" {
		return fmt.Errorf("%w %q: %q is not an http(s) URL", ErrInvalidSource, name, uri)
	}
	return nil
}

// Save writes the configuration to path, creating parent directories.
// Zero values are left out, so save what Read returned to keep defaults out of the file.
func Save(path string, config *TomlConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		f.Close()
		return fmt.Errorf("error writing config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
