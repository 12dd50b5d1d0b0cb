package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level blendstats configuration.
type Config struct {
	// BlenderBin is a command name or absolute path to Blender.
	BlenderBin string `mapstructure:"blender_bin"`
	// ScriptPath overrides the companion script; empty means next to the executable.
	ScriptPath string `mapstructure:"script_path"`
	// FallbackPath overrides the bundled sample .blend.
	FallbackPath  string        `mapstructure:"fallback_path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	Output        Output        `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A .env file in the working
// directory is loaded into the environment first; BLENDSTATS_* variables
// override file values.
func Load(cfgFile string) (*Config, error) {
	// Missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("blender_bin", DefaultBlenderBin)
	v.SetDefault("script_path", "")
	v.SetDefault("fallback_path", "")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("watch_interval", DefaultWatchInterval)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ScriptPath = expandPath(cfg.ScriptPath)
	cfg.FallbackPath = expandPath(cfg.FallbackPath)
	if cfg.BlenderBin == "" {
		cfg.BlenderBin = DefaultBlenderBin
	}
	cfg.BlenderBin = expandPath(cfg.BlenderBin)

	return &cfg, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}
