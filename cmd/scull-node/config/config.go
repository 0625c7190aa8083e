package config

import (
	"fmt"
	"strings"

	"github.com/rtbo/scull/cmd/scull-node/config/internal"
	"github.com/spf13/viper"
)

// Config is a named tree of configuration values. Sub-trees are
// sections addressed with Sub, leaves are values addressed with
// Value. Environment variables carrying the application prefix
// override file values on every lookup.
type Config struct {
	v *viper.Viper

	path []string
}

const separator = "."

// Option modifies the way New assembles the tree.
type Option func(*settings)

type settings struct {
	file string
}

// WithConfigFile points New at a configuration file. The format is
// detected from the extension. An empty path is ignored, leaving the
// tree backed by environment variables alone.
func WithConfigFile(file string) Option {
	return func(s *settings) {
		s.file = file
	}
}

// New assembles a configuration tree from the file named with
// WithConfigFile, if any, and the process environment. A named file
// that cannot be opened or parsed is fatal.
func New(opts ...Option) *Config {
	var s settings
	for i := range opts {
		opts[i](&s)
	}

	v := viper.New()

	v.SetEnvPrefix(internal.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(separator, internal.EnvSeparator))

	if s.file != "" {
		v.SetConfigFile(s.file)

		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("failed to read config: %w", err))
		}
	}

	return &Config{
		v: v,
	}
}
