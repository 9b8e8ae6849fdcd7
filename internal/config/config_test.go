package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUTRITION_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Fatalf("log = %+v, want info/console", cfg.Log)
	}
	if cfg.Formatter.Output != "ingredients_insert.sql" || cfg.Formatter.BatchSize != 100 || cfg.Formatter.Table != "simple_ingredients" {
		t.Fatalf("formatter = %+v", cfg.Formatter)
	}
	if cfg.Splitter.OutputDir != "./split_sql" || cfg.Splitter.RowsPerFile != 500 || cfg.Splitter.Workers != 4 {
		t.Fatalf("splitter = %+v", cfg.Splitter)
	}
	a := cfg.Aggregator
	if a.APIKey != "DEMO_KEY" || a.BaseURL != "https://api.nal.usda.gov/fdc/v1" {
		t.Fatalf("aggregator endpoint = %q %q", a.APIKey, a.BaseURL)
	}
	if a.PageSize != 25 || a.MaxResults != 10 || a.MaxRetries != 2 || a.FetchDetails {
		t.Fatalf("aggregator = %+v", a)
	}
	if a.RequestInterval != time.Second || a.Timeout != 30*time.Second {
		t.Fatalf("aggregator durations = %v %v, want 1s 30s", a.RequestInterval, a.Timeout)
	}
	if cfg.Metrics.Job != "nutrition" || cfg.Metrics.PushgatewayURL != "" || cfg.Metrics.StatsdAddr != "" {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
	if issues := Errors(Validate(*cfg), ""); len(issues) != 0 {
		t.Fatalf("defaults should validate, got %v", issues)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUTRITION_CONFIG", "")
	t.Setenv("NUTRITION_AGGREGATOR_API_KEY", "abc")
	t.Setenv("NUTRITION_AGGREGATOR_REQUEST_INTERVAL", "250ms")
	t.Setenv("NUTRITION_FORMATTER_BATCH_SIZE", "42")
	t.Setenv("NUTRITION_AGGREGATOR_FETCH_DETAILS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Aggregator.APIKey != "abc" {
		t.Errorf("api_key = %q, want abc", cfg.Aggregator.APIKey)
	}
	if cfg.Aggregator.RequestInterval != 250*time.Millisecond {
		t.Errorf("request_interval = %v, want 250ms", cfg.Aggregator.RequestInterval)
	}
	if cfg.Formatter.BatchSize != 42 {
		t.Errorf("batch_size = %d, want 42", cfg.Formatter.BatchSize)
	}
	if !cfg.Aggregator.FetchDetails {
		t.Errorf("fetch_details = false, want true")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NUTRITION_CONFIG", "")

	const yml = `
splitter:
  rows_per_file: 50
  prefix: fruits_veg
formatter:
  header_map:
    food_name: name
aggregator:
  output: out.json
`
	if err := os.WriteFile(filepath.Join(dir, "nutrition.yaml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Splitter.RowsPerFile != 50 || cfg.Splitter.Prefix != "fruits_veg" {
		t.Fatalf("splitter = %+v", cfg.Splitter)
	}
	if cfg.Splitter.OutputDir != "./split_sql" {
		t.Fatalf("unset keys keep defaults, got output_dir=%q", cfg.Splitter.OutputDir)
	}
	if cfg.Aggregator.Output != "out.json" {
		t.Fatalf("aggregator.output = %q", cfg.Aggregator.Output)
	}
	if want := map[string]string{"food_name": "name"}; !reflect.DeepEqual(cfg.Formatter.HeaderMap, want) {
		t.Fatalf("header_map = %v, want %v", cfg.Formatter.HeaderMap, want)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"log": {"level": "debug"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NUTRITION_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a named config file that does not exist")
	}
}
