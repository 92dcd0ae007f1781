// Package config loads the settings shared by the poi tools from an optional YAML file, overlaid
// by POI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load, for example
// POI_GOOGLE_API_KEY or POI_FETCH_AREA.
const EnvPrefix = "POI"

// MinPageDelay is the shortest accepted fetch.page_delay. Google rejects a next_page_token that
// is used sooner.
const MinPageDelay = 2 * time.Second

type Config struct {
	Google     GoogleConfig     `yaml:"google"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Categorize CategorizeConfig `yaml:"categorize"`
	Pictures   PicturesConfig   `yaml:"pictures"`
	Status     StatusConfig     `yaml:"status"`
	// Database is an optional SQLite path used to record each run.
	Database        string `yaml:"database"`
	MetricsTextfile string `yaml:"metrics_textfile" split_words:"true"`
}

type GoogleConfig struct {
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL string        `yaml:"base_url" split_words:"true"`
	Timeout time.Duration `yaml:"timeout"`
}

type FetchConfig struct {
	Area        string        `yaml:"area"`
	Latitude    float64       `yaml:"latitude"`
	Longitude   float64       `yaml:"longitude"`
	Radius      int           `yaml:"radius"`
	MaxDistance float64       `yaml:"max_distance" split_words:"true"`
	Categories  []string      `yaml:"categories"`
	PageDelay   time.Duration `yaml:"page_delay" split_words:"true"`
	RecordDelay time.Duration `yaml:"record_delay" split_words:"true"`
	// Output defaults to "<OutputPrefix>_YYYYMMDD_HHMMSS.csv".
	Output       string `yaml:"output"`
	OutputPrefix string `yaml:"output_prefix" split_words:"true"`
}

type CategorizeConfig struct {
	Input             string `yaml:"input"`
	Output            string `yaml:"output"`
	NameColumn        string `yaml:"name_column" split_words:"true"`
	DescriptionColumn string `yaml:"description_column" split_words:"true"`
	CategoryColumn    string `yaml:"category_column" split_words:"true"`
}

type PicturesConfig struct {
	Input      string `yaml:"input"`
	Folder     string `yaml:"folder"`
	Output     string `yaml:"output"`
	NameColumn string `yaml:"name_column" split_words:"true"`
}

type StatusConfig struct {
	Input         string        `yaml:"input"`
	Output        string        `yaml:"output"`
	NameColumn    string        `yaml:"name_column" split_words:"true"`
	AddressColumn string        `yaml:"address_column" split_words:"true"`
	RequestDelay  time.Duration `yaml:"request_delay" split_words:"true"`
}

// DefaultCategories are the Google Places types searched by the fetch tool.
var DefaultCategories = []string{
	"restaurant",
	"atm",
	"gas_station",
	"farm",
	"store",
	"supermarket",
	"park",
	"hotel",
	"tourist_attraction",
	"shopping_mall",
	"museum",
	"movie_theater",
	"point_of_interest",
	"establishment",
}

// Default returns the configuration used when no file or environment overrides are present. The
// fetch area is Wayne County, Ohio.
func Default() *Config {

	categories := make([]string, len(DefaultCategories))
	copy(categories, DefaultCategories)

	return &Config{
		Google: GoogleConfig{
			Timeout: 30 * time.Second,
		},
		Fetch: FetchConfig{
			Area:         "Wayne County, Ohio",
			Latitude:     40.8292,
			Longitude:    -81.8885,
			Radius:       20000,
			Categories:   categories,
			PageDelay:    2 * time.Second,
			RecordDelay:  100 * time.Millisecond,
			OutputPrefix: "wayne_county_poi",
		},
		Categorize: CategorizeConfig{
			Input:             "cleaned_unique_locations_v1(in).csv",
			Output:            "categorized_locations.csv",
			NameColumn:        "name",
			DescriptionColumn: "summary",
			CategoryColumn:    "category",
		},
		Pictures: PicturesConfig{
			Input:      "short.csv",
			Folder:     "pics",
			Output:     "location_pictures.xlsx",
			NameColumn: "name",
		},
		Status: StatusConfig{
			Input:         "categorized_locations.csv",
			Output:        "location_status_checked.csv",
			NameColumn:    "name",
			AddressColumn: "full_address",
			RequestDelay:  100 * time.Millisecond,
		},
	}
}

// Load returns the default configuration overlaid by the YAML file at 'path' (if 'path' is not
// empty) and then by the environment. GOOGLE_API_KEY is honoured when POI_GOOGLE_API_KEY is unset.
func Load(path string) (*Config, error) {

	cfg := Default()

	if path != "" {

		body, err := os.ReadFile(path)

		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		err = yaml.Unmarshal(body, cfg)

		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	err := envconfig.Process(EnvPrefix, cfg)

	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cfg.Google.APIKey == "" {
		cfg.Google.APIKey = os.Getenv("GOOGLE_API_KEY")
	}

	err = cfg.Validate()

	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnvFile adds the variables in the dotenv file at 'path' to the environment. Variables that
// are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {

	if path == "" {
		return nil
	}

	_, err := os.Stat(path)

	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	err = godotenv.Load(path)

	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// Validate checks values that would otherwise fail deep inside a batch run.
func (cfg *Config) Validate() error {

	var errs []error

	if cfg.Fetch.Radius < 0 {
		errs = append(errs, fmt.Errorf("fetch.radius must not be negative"))
	}

	if cfg.Fetch.MaxDistance < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_distance must not be negative"))
	}

	if cfg.Fetch.Latitude < -90 || cfg.Fetch.Latitude > 90 {
		errs = append(errs, fmt.Errorf("fetch.latitude %v out of range", cfg.Fetch.Latitude))
	}

	if cfg.Fetch.Longitude < -180 || cfg.Fetch.Longitude > 180 {
		errs = append(errs, fmt.Errorf("fetch.longitude %v out of range", cfg.Fetch.Longitude))
	}

	if cfg.Fetch.PageDelay < MinPageDelay {
		errs = append(errs, fmt.Errorf("fetch.page_delay must be at least %v", MinPageDelay))
	}

	if cfg.Fetch.RecordDelay < 0 || cfg.Status.RequestDelay < 0 {
		errs = append(errs, fmt.Errorf("delays must not be negative"))
	}

	return errors.Join(errs...)
}
