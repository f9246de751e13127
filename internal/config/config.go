package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Map   MapConfig   `mapstructure:"map"`
	Load  LoadConfig  `mapstructure:"load"`
	Serve ServeConfig `mapstructure:"serve"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type MapConfig struct {
	Tiles            string `mapstructure:"tiles"`
	Attribution      string `mapstructure:"attribution"`
	ControlCollapsed bool   `mapstructure:"controlCollapsed"`
}

type LoadConfig struct {
	Lenient          bool `mapstructure:"lenient"`
	ValidateGeometry bool `mapstructure:"validateGeometry"`
}

type ServeConfig struct {
	Address string `mapstructure:"address"`
}

// Load reads sprocmap.yaml from configDir when present, a .env file from
// the working directory when present, and SPROCMAP_* environment overrides
// (SPROCMAP_LOG_LEVEL, SPROCMAP_SERVE_ADDRESS, ...).
func Load(configDir string) (Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)

	viper.SetDefault("map.tiles", "")
	viper.SetDefault("map.attribution", "")
	viper.SetDefault("map.controlCollapsed", true)

	viper.SetDefault("load.lenient", false)
	viper.SetDefault("load.validateGeometry", false)

	viper.SetDefault("serve.address", "127.0.0.1:8080")

	viper.SetConfigName("sprocmap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetEnvPrefix("sprocmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}
