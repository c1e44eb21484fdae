// Package config loads synchronizer settings from an optional YAML file
// and WIKISYNC_* environment variables, environment taking precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Wiki struct {
	APIURL    string `mapstructure:"api_url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	UserAgent string `mapstructure:"user_agent"`
}

type Google struct {
	Project     string            `mapstructure:"project"`
	Location    string            `mapstructure:"location"`
	Credentials string            `mapstructure:"credentials"`
	Glossaries  map[string]string `mapstructure:"glossaries"`
}

type Config struct {
	Wiki   Wiki   `mapstructure:"wiki"`
	Google Google `mapstructure:"google"`

	// DatabaseURL is the Postgres connection string for the job queue.
	DatabaseURL string `mapstructure:"database_url"`
	// CachePath is the SQLite file holding the translation cache.
	CachePath string `mapstructure:"cache_path"`

	SourceLang  string   `mapstructure:"source_lang"`
	TargetLangs []string `mapstructure:"target_langs"`

	// StrictMarkers lists markup fragments whose presence must survive a
	// cached translation unchanged; a cached entry missing one is not
	// reused.
	StrictMarkers []string `mapstructure:"strict_markers"`

	// Disclaimer toggles insertion of the machine-translation notice box.
	Disclaimer  bool   `mapstructure:"disclaimer"`
	StringsFile string `mapstructure:"strings_file"`

	MaxRetries int  `mapstructure:"max_retries"`
	DryRun     bool `mapstructure:"dry_run"`
}

// Load reads configuration. cfgFile may be empty, in which case only
// defaults and environment variables apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WIKISYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("wiki.user_agent", "wikisync/1.0")
	v.SetDefault("google.location", "global")
	v.SetDefault("cache_path", "wikisync.db")
	v.SetDefault("source_lang", "en")
	v.SetDefault("strict_markers", []string{"{{Callout"})
	v.SetDefault("disclaimer", true)
	v.SetDefault("max_retries", 3)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Wiki.APIURL == "" {
		return fmt.Errorf("wiki.api_url is required")
	}
	if c.SourceLang == "" {
		return fmt.Errorf("source_lang is required")
	}
	if len(c.TargetLangs) == 0 {
		return fmt.Errorf("target_langs must name at least one language")
	}
	for _, lang := range c.TargetLangs {
		if lang == c.SourceLang {
			return fmt.Errorf("target_langs must not include the source language %q", c.SourceLang)
		}
	}
	return nil
}
