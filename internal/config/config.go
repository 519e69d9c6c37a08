// Package config loads the prreview YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"gopkg.in/yaml.v3"

	"prreview/internal/comments"
)

const (
	configDirName  = "prreview"
	configFileName = "config.yaml"
)

// Config is the user configuration. Zero-valued fields take their defaults.
type Config struct {
	GHPath          string `yaml:"gh_path"`
	GitPath         string `yaml:"git_path"`
	DefaultEvent    string `yaml:"default_event"`
	ApprovalMessage string `yaml:"approval_message"`
	TreeWidth       int    `yaml:"tree_width"`
	ShowFileTree    *bool  `yaml:"show_file_tree"`
	ExpandContext   int    `yaml:"expand_context"`
	SyntaxTheme     string `yaml:"syntax_theme"`
}

func Default() Config {
	show := true
	return Config{
		GHPath:          "gh",
		GitPath:         "git",
		DefaultEvent:    string(comments.EventComment),
		ApprovalMessage: ":rocket: thanks for your contribution",
		TreeWidth:       40,
		ShowFileTree:    &show,
		ExpandContext:   20,
		SyntaxTheme:     "monokai",
	}
}

// Event is the parsed default review event.
func (c Config) Event() comments.Event {
	e, err := comments.ParseEvent(c.DefaultEvent)
	if err != nil {
		return comments.EventComment
	}
	return e
}

// FileTreeVisible reports whether the tree pane starts open.
func (c Config) FileTreeVisible() bool {
	return c.ShowFileTree == nil || *c.ShowFileTree
}

func Load() (Config, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath reads path over the defaults. A missing or empty file yields
// the defaults.
func LoadFromPath(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// fill restores defaults for keys set to empty values.
func (c *Config) fill() {
	d := Default()
	c.GHPath = strings.TrimSpace(c.GHPath)
	c.GitPath = strings.TrimSpace(c.GitPath)
	if c.GHPath == "" {
		c.GHPath = d.GHPath
	}
	if c.GitPath == "" {
		c.GitPath = d.GitPath
	}
	if strings.TrimSpace(c.DefaultEvent) == "" {
		c.DefaultEvent = d.DefaultEvent
	}
	if c.SyntaxTheme == "" {
		c.SyntaxTheme = d.SyntaxTheme
	}
}

func (c Config) Validate() error {
	var errs []error
	if _, err := comments.ParseEvent(c.DefaultEvent); err != nil {
		errs = append(errs, fmt.Errorf("default_event: %w", err))
	}
	if c.TreeWidth < 10 {
		errs = append(errs, fmt.Errorf("tree_width must be at least 10, got %d", c.TreeWidth))
	}
	if c.ExpandContext < 0 {
		errs = append(errs, fmt.Errorf("expand_context must not be negative, got %d", c.ExpandContext))
	}
	if !knownTheme(c.SyntaxTheme) {
		errs = append(errs, fmt.Errorf("syntax_theme: unknown chroma style %q", c.SyntaxTheme))
	}
	return errors.Join(errs...)
}

func knownTheme(name string) bool {
	for _, n := range styles.Names() {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
