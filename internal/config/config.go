// Package config loads settings for the nutrition tools.
//
// Values come, lowest precedence first, from built-in defaults, an optional
// config file (nutrition.{yaml,json,toml} in the working directory, or the
// file named by NUTRITION_CONFIG), a .env file, and NUTRITION_* environment
// variables where dots in a key become underscores
// (aggregator.api_key -> NUTRITION_AGGREGATOR_API_KEY). Command line
// arguments are applied on top by each command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NUTRITION"

// Config is the full settings tree.
type Config struct {
	Log        Log        `mapstructure:"log"`
	Metrics    Metrics    `mapstructure:"metrics"`
	Formatter  Formatter  `mapstructure:"formatter"`
	Splitter   Splitter   `mapstructure:"splitter"`
	Aggregator Aggregator `mapstructure:"aggregator"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// Metrics selects a backend. Both empty disables metrics.
type Metrics struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	StatsdAddr     string `mapstructure:"statsd_addr"`
	Job            string `mapstructure:"job"`
}

// Formatter settings. CreateTable emits CREATE TABLE IF NOT EXISTS before
// the inserts.
type Formatter struct {
	Output      string            `mapstructure:"output"`
	BatchSize   int               `mapstructure:"batch_size"`
	Table       string            `mapstructure:"table"`
	HeaderMap   map[string]string `mapstructure:"header_map"`
	CreateTable bool              `mapstructure:"create_table"`
}

type Splitter struct {
	OutputDir   string `mapstructure:"output_dir"`
	RowsPerFile int    `mapstructure:"rows_per_file"`
	Prefix      string `mapstructure:"prefix"`
	Workers     int    `mapstructure:"workers"`
}

type Aggregator struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Output          string        `mapstructure:"output"`
	PageSize        int           `mapstructure:"page_size"`
	MaxResults      int           `mapstructure:"max_results"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
	FetchDetails    bool          `mapstructure:"fetch_details"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	QueriesFile     string        `mapstructure:"queries_file"`
}

var defaults = map[string]any{
	"log.level":  "info",
	"log.format": "console",

	"metrics.pushgateway_url": "",
	"metrics.statsd_addr":     "",
	"metrics.job":             "nutrition",

	"formatter.output":       "ingredients_insert.sql",
	"formatter.batch_size":   100,
	"formatter.table":        "simple_ingredients",
	"formatter.create_table": false,

	"splitter.output_dir":    "./split_sql",
	"splitter.rows_per_file": 500,
	"splitter.prefix":        "",
	"splitter.workers":       4,

	"aggregator.api_key":          "DEMO_KEY",
	"aggregator.base_url":         "https://api.nal.usda.gov/fdc/v1",
	"aggregator.output":           "usda_food_categories_portions.json",
	"aggregator.page_size":        25,
	"aggregator.max_results":      10,
	"aggregator.request_interval": "1s",
	"aggregator.fetch_details":    false,
	"aggregator.timeout":          "30s",
	"aggregator.max_retries":      2,
	"aggregator.queries_file":     "",
}

// Load reads the configuration. path names a config file explicitly; when
// empty, NUTRITION_CONFIG is consulted and then ./nutrition.* is searched. A
// missing file is only an error when it was named.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nutrition")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}
