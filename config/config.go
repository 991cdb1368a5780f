// Package config loads the settings for cmd/qparse from flags, environment
// variables, and an optional YAML file, in that order of precedence.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the CLI and the parser it drives need.
type Config struct {
	// MaxDepth overrides the parser's recursion depth limit.
	MaxDepth int `mapstructure:"max-depth" yaml:"max-depth"`

	// EnableWhere, EnableText, EnableGeo gate the optional operator
	// families; when disabled, the CLI installs a callback that rejects
	// the operator with a "disabled by configuration" error. When
	// enabled, the parser's default callbacks stay in place; the CLI links
	// in no $where/$text/geo implementation, so those still fail.
	EnableWhere bool `mapstructure:"enable-where" yaml:"enable-where"`
	EnableText  bool `mapstructure:"enable-text" yaml:"enable-text"`
	EnableGeo   bool `mapstructure:"enable-geo" yaml:"enable-geo"`

	// DBRefStrict selects strict ($ref and $id both required, the default)
	// vs. permissive (any of $ref/$id/$db) DBRef detection. $elemMatch
	// always uses permissive detection regardless of this setting.
	DBRefStrict bool `mapstructure:"dbref-strict" yaml:"dbref-strict"`

	// LogLevel is a zap level name: "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`

	// ConfigFile is neither filled in nor consulted by Load; Load takes the
	// YAML overlay's path from the --config flag.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// Defaults returns the configuration used when no flag, env var, or file
// overrides a setting.
func Defaults() Config {
	return Config{
		MaxDepth:    100,
		EnableWhere: false,
		EnableText:  false,
		EnableGeo:   false,
		DBRefStrict: true,
		LogLevel:    "info",
	}
}

// RegisterFlags binds the CLI's flag surface onto fs, to be read back by
// Load.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Int("max-depth", d.MaxDepth, "maximum query tree recursion depth")
	fs.Bool("enable-where", d.EnableWhere, "allow $where")
	fs.Bool("enable-text", d.EnableText, "allow $text")
	fs.Bool("enable-geo", d.EnableGeo, "allow geo operators")
	fs.Bool("dbref-strict", d.DBRefStrict, "require both $ref and $id for DBRef detection (disable for permissive any-of-$ref/$id/$db)")
	fs.String("log-level", d.LogLevel, "zap log level (debug, info, warn, error)")
	fs.String("config", "", "path to a YAML config file")
}

// Load merges defaults, an optional YAML file, environment variables
// (QPARSE_ prefix), and flags (highest precedence) into a Config.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("max-depth", d.MaxDepth)
	v.SetDefault("enable-where", d.EnableWhere)
	v.SetDefault("enable-text", d.EnableText)
	v.SetDefault("enable-geo", d.EnableGeo)
	v.SetDefault("dbref-strict", d.DBRefStrict)
	v.SetDefault("log-level", d.LogLevel)

	v.SetEnvPrefix("QPARSE")
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes a YAML config file with Defaults' values (keys only,
// no comments), for a user to copy and edit rather than guess the flag
// names at.
func WriteDefault(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(Defaults())
}
