package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"imgopt/internal/processor"
)

// EnvPrefix is prepended to every environment override, e.g. IMGOPT_QUALITY.
const EnvPrefix = "IMGOPT"

// Config holds the run defaults collected from flags, environment and an
// optional config file.
type Config struct {
	OutputDir  string `mapstructure:"output"`
	Quality    int    `mapstructure:"quality"`
	Format     string `mapstructure:"format"`
	Name       string `mapstructure:"name"`
	Mode       string `mapstructure:"mode"`
	Resolution int    `mapstructure:"resolution"`
	AutoOrient bool   `mapstructure:"auto_orient"`
	NoTUI      bool   `mapstructure:"no_tui"`
	Log        Log    `mapstructure:"log"`
}

// Log holds diagnostic logging configuration.
type Log struct {
	File  string `mapstructure:"file"`
	Debug bool   `mapstructure:"debug"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"output":      "output",
	"quality":     "quality",
	"format":      "format",
	"name":        "name",
	"mode":        "mode",
	"resolution":  "resolution",
	"auto-orient": "auto_orient",
	"no-tui":      "no_tui",
	"log-file":    "log.file",
	"debug":       "log.debug",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", processor.DefaultOutputDir)
	v.SetDefault("quality", 85)
	v.SetDefault("format", "jpeg")
	v.SetDefault("name", "")
	v.SetDefault("mode", "percentage")
	v.SetDefault("resolution", 75)
	v.SetDefault("auto_orient", false)
	v.SetDefault("no_tui", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.debug", false)
}

// Load resolves configuration with precedence flags > env > file > defaults.
// path may be empty; flags may be nil. Only flags the user actually set
// override lower layers.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
