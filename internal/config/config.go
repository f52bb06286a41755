// Package config loads application settings from, in increasing order of
// precedence: built-in defaults, a YAML config file, SRS_-prefixed
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Session caps for the study queue.
type Session struct {
	MaxCards    int `koanf:"max_cards" validate:"gte=1"`
	MaxNewCards int `koanf:"max_new_cards" validate:"gte=0"`
}

// Config holds all tunables for the application.
type Config struct {
	DBPath      string  `koanf:"db" validate:"required"`
	Listen      string  `koanf:"listen" validate:"required"`
	ReposDir    string  `koanf:"repos_dir" validate:"required"`
	MaxInterval int     `koanf:"max_interval" validate:"gte=0"`
	Session     Session `koanf:"session"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:      "srs.db",
		Listen:      ":8080",
		ReposDir:    "repos",
		MaxInterval: 36500,
		Session: Session{
			MaxCards:    20,
			MaxNewCards: 10,
		},
	}
}

// flagKeys maps command-line flag names onto config keys. Flags not listed
// here (like --sync) are actions, not configuration, and are skipped.
var flagKeys = map[string]string{
	"db":            "db",
	"listen":        "listen",
	"repos-dir":     "repos_dir",
	"max-interval":  "max_interval",
	"max-cards":     "session.max_cards",
	"max-new-cards": "session.max_new_cards",
}

// Load builds the effective configuration. path may be empty (no config
// file) and flags may be nil (no command line).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	// SRS_LISTEN=:9090, SRS_SESSION__MAX_CARDS=40, etc. A double
	// underscore separates nesting levels so single underscores survive
	// inside key names.
	err := k.Load(env.ProviderWithValue("SRS_", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, "SRS_"))
		key = strings.ReplaceAll(key, "__", ".")
		return key, value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	if flags != nil {
		p := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(p, nil); err != nil {
			return Config{}, fmt.Errorf("config: load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}
