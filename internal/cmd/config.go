package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	configName = ".mdmark"
	envPrefix  = "MDMARK"
)

type config struct {
	Lang    []string `mapstructure:"lang"`
	Quiet   bool     `mapstructure:"quiet"`
	Verbose bool     `mapstructure:"verbose"`
	Dir     string   `mapstructure:"dir"`
}

func configPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	return paths
}

// loadConfig reads .mdmark.yaml from the first of paths that has one and
// overlays MDMARK_* environment variables. A missing file is not an error.
func loadConfig(paths ...string) (cfg config, err error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("lang", []string{"*"})
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)
	v.SetDefault("dir", "mdmark-dump")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}
