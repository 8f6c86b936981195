package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
	Markup     MarkupConfig     `yaml:"markup"`
}

type ConfluenceConfig struct {
	BaseURI         string `yaml:"base_uri"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	DefaultSpaceKey string `yaml:"default_space_key"`
}

type MarkupConfig struct {
	RSTTool        string `yaml:"rst_tool"`
	DisableRewrite bool   `yaml:"disable_rewrite"`
}

const defaultRSTTool = "rst2html"

// Environment overrides, so credentials can live in the environment (or a
// .env file) instead of on disk.
const (
	envConfig   = "WIKIPEN_CONFIG"
	envBaseURI  = "WIKIPEN_BASE_URI"
	envUsername = "WIKIPEN_USERNAME"
	envPassword = "WIKIPEN_PASSWORD"
	envSpaceKey = "WIKIPEN_SPACE_KEY"
)

func Load(path string) (*Config, error) {
	config, err := LoadLenient(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadLenient reads the file without validating, for commands that edit a
// half-filled config. A missing file yields defaults plus environment
// overrides, so the tool can run from environment variables alone.
func LoadLenient(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Markup.RSTTool == "" {
		c.Markup.RSTTool = defaultRSTTool
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envBaseURI); v != "" {
		c.Confluence.BaseURI = v
	}
	if v := os.Getenv(envUsername); v != "" {
		c.Confluence.Username = v
	}
	if v := os.Getenv(envPassword); v != "" {
		c.Confluence.Password = v
	}
	if v := os.Getenv(envSpaceKey); v != "" {
		c.Confluence.DefaultSpaceKey = v
	}
}

func (c *Config) Validate() error {
	if err := c.Confluence.Validate(); err != nil {
		return err
	}
	return c.Markup.Validate()
}

// Validate requires only base_uri: credentials may arrive via environment or
// interactive prompt, and the space key via front matter.
func (c *ConfluenceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURI, validation.Required),
	)
}

func (c *MarkupConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RSTTool, validation.Required),
	)
}

// ResolveConfigPath picks the config file: the explicit flag value, then the
// WIKIPEN_CONFIG environment variable, then wikipen.yaml in the working
// directory, then the per-user config directory.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envConfig); v != "" {
		return v
	}
	if _, err := os.Stat("wikipen.yaml"); err == nil {
		return "wikipen.yaml"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "wikipen.yaml"
	}
	return filepath.Join(dir, "wikipen", "config.yaml")
}
