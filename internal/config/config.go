// Package config loads scene-adapter settings from .env, a YAML file and the
// environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/scene-adapter/internal/dialogue"
	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/prompt"
)

const (
	EnvConfig        = "SCENE_ADAPTER_CONFIG"
	EnvDB            = "SCENE_ADAPTER_DB"
	EnvNarratorVoice = "SCENE_ADAPTER_NARRATOR_VOICE"
	EnvDefaultModel  = "SCENE_ADAPTER_DEFAULT_MODEL"
	EnvWPM           = "SCENE_ADAPTER_WPM"
	EnvAddr          = "SCENE_ADAPTER_ADDR"
)

// Config is the resolved configuration.
type Config struct {
	DBPath         string                        `yaml:"db"`
	NarratorVoice  string                        `yaml:"narrator_voice"`
	DefaultModel   string                        `yaml:"default_model"`
	WordsPerMinute float64                       `yaml:"words_per_minute"`
	Addr           string                        `yaml:"addr"`
	LogLevel       string                        `yaml:"log_level"`
	Models         map[string]model.ModelProfile `yaml:"models"`

	// Path is the config file that was read, empty if none.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath:         filepath.Join(home, ".scene-adapter", "journal.db"),
		NarratorVoice:  dialogue.DefaultNarratorVoice,
		DefaultModel:   prompt.DefaultModelID,
		WordsPerMinute: dialogue.DefaultWordsPerMinute,
		Addr:           ":8080",
		LogLevel:       "info",
	}
}

// DefaultPath returns ~/.scene-adapter/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".scene-adapter", "config.yaml")
}

// Load resolves configuration. path may be empty, in which case
// $SCENE_ADAPTER_CONFIG and then DefaultPath are tried. A missing file is
// not an error unless path was given explicitly.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvNarratorVoice); v != "" {
		c.NarratorVoice = v
	}
	if v := os.Getenv(EnvDefaultModel); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvWPM); v != "" {
		wpm, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvWPM, err)
		}
		c.WordsPerMinute = wpm
	}
	return nil
}

// Validate checks the speaking rate and every configured model profile.
func (c Config) Validate() error {
	if err := dialogue.CheckRate(c.WordsPerMinute); err != nil {
		return fmt.Errorf("words_per_minute: %w", err)
	}
	if _, err := c.Profiles(); err != nil {
		return err
	}
	return nil
}

// Profiles builds the profile table: built-ins overlaid with Models. Unknown
// ids always fall back to prompt.DefaultModelID; DefaultModel only picks the
// target when a command names no model.
func (c Config) Profiles() (*prompt.Profiles, error) {
	return prompt.NewProfiles(c.Models, "")
}

// Adapter builds a prompt adapter over the configured profiles.
func (c Config) Adapter() (*prompt.Adapter, error) {
	profiles, err := c.Profiles()
	if err != nil {
		return nil, err
	}
	return prompt.NewAdapter(profiles, nil), nil
}

// Assembler builds a dialogue assembler at the configured speaking rate.
func (c Config) Assembler() (*dialogue.Assembler, error) {
	opts := dialogue.DefaultOptions()
	opts.WordsPerMinute = c.WordsPerMinute
	return dialogue.New(opts)
}
