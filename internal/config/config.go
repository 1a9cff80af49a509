// Package config holds the application configuration of the menu bot:
// the reusable core sections plus database and content settings.
package config

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/infobot/core/config"
	coredatabase "github.com/m3rciful/infobot/core/database"
)

const (
	// DefaultPageSize is the number of list items shown per page.
	DefaultPageSize = 20
	// MaxPageSize caps the page size so a full page stays well under one message.
	MaxPageSize = 100
)

// ContentConfig selects the content bundle and how it is presented.
type ContentConfig struct {
	// Path to a YAML bundle; empty selects the bundle embedded in the binary.
	Path     string `yaml:"path" envconfig:"CONTENT_PATH"`
	PageSize int    `yaml:"page_size" envconfig:"CONTENT_PAGE_SIZE"`
	// Format is the markup dialect: html, markdown or plain.
	Format string `yaml:"format" envconfig:"CONTENT_FORMAT"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Content  ContentConfig       `yaml:"content"`
}

// CoreConfig exposes the embedded framework configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path (optional) overlaid by the environment
// and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	return normalizeContent(&cfg.Content)
}

func normalizeContent(c *ContentConfig) error {
	c.Path = strings.TrimSpace(c.Path)

	switch {
	case c.PageSize == 0:
		c.PageSize = DefaultPageSize
	case c.PageSize < 1 || c.PageSize > MaxPageSize:
		return fmt.Errorf("content.page_size must be between 1 and %d, got %d", MaxPageSize, c.PageSize)
	}

	f := strings.ToLower(strings.TrimSpace(c.Format))
	switch f {
	case "":
		f = "html"
	case "html", "plain", "markdown":
	default:
		return fmt.Errorf("invalid content.format %q; allowed: html, plain, markdown", c.Format)
	}
	c.Format = f
	return nil
}
