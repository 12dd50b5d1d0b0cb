// Package config provides configuration loading and defaults for blendstats.
package config

import "time"

// DefaultBlenderBin is the Blender command resolved through $PATH.
const DefaultBlenderBin = "blender"

// DefaultConfigDir is the default location for blendstats configuration.
const DefaultConfigDir = "~/.config/blendstats"

// DefaultDBName is the filename for the SQLite snapshot database.
const DefaultDBName = "blendstats.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. BLENDSTATS_BLENDER_BIN.
const EnvPrefix = "BLENDSTATS"

// DefaultTimeout bounds a single Blender run.
const DefaultTimeout = 2 * time.Minute

// DefaultWatchInterval is how often the watcher polls the project file.
const DefaultWatchInterval = 5 * time.Second

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
