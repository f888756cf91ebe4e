// Package config resolves runtime settings from flags, environment, an
// optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sadopc/sleeptrackr/internal/logging"
	"github.com/sadopc/sleeptrackr/internal/store"
)

type Config struct {
	// DB is the SQLite database path.
	DB string `mapstructure:"db"`
	// Lang overrides the language stored in settings when non-empty.
	Lang     string `mapstructure:"lang"`
	LogLevel string `mapstructure:"log_level"`
	// LogFile receives logs while the TUI owns the terminal.
	LogFile string `mapstructure:"log_file"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"db":        "db",
	"lang":      "lang",
	"log-level": "log_level",
	"log-file":  "log_file",
}

// RegisterFlags adds the global flags Load understands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("db", "", "path to the sleep database")
	fs.String("lang", "", "display language (en, de)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "log file used while the TUI is running")
	fs.String("config", "", "path to a sleeptrackr.yaml config file")
}

func defaults() (map[string]any, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	logPath, err := logging.DefaultLogPath()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"db":        dbPath,
		"lang":      "",
		"log_level": "info",
		"log_file":  logPath,
	}, nil
}

// Load builds a Config. fs may be nil; configFile, when set, must exist.
func Load(fs *pflag.FlagSet, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	defs, err := defaults()
	if err != nil {
		return c, fmt.Errorf("resolve defaults: %w", err)
	}
	for key, value := range defs {
		v.SetDefault(key, value)
	}

	v.SetConfigName("sleeptrackr")
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "sleeptrackr"))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("sleeptrackr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("bind flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
