package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Recipe network inputs.
	RecipesEnabled bool
	RecipesURI     string
	LinkMinShared  int

	// County choropleth inputs.
	CountiesEnabled bool
	WorshipURI      string
	PopulationURI   string
	TopologyURI     string

	// RefreshSchedule is a standard cron expression. Empty means a single
	// run at startup.
	RefreshSchedule string
	FetchTimeout    time.Duration

	// S3-compatible object storage for s3:// source URIs.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "30s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	minShared, err := strconv.Atoi(sharedcfg.EnvOrDefault("LINK_MIN_SHARED", "3"))
	if err != nil || minShared < 0 {
		return nil, errors.New("invalid LINK_MIN_SHARED: must be a non-negative integer")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   parseBool("KAFKA_ENABLED", true),
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "viz-datasets"),

		RecipesEnabled: parseBool("RECIPES_ENABLED", true),
		RecipesURI:     sharedcfg.EnvOrDefault("RECIPES_URI", "data/one-year-of-recipes.csv"),
		LinkMinShared:  minShared,

		CountiesEnabled: parseBool("COUNTIES_ENABLED", true),
		WorshipURI:      sharedcfg.EnvOrDefault("WORSHIP_URI", "data/places_of_worship.csv"),
		PopulationURI:   sharedcfg.EnvOrDefault("POPULATION_URI", "data/popData.csv"),
		TopologyURI:     sharedcfg.EnvOrDefault("TOPOLOGY_URI", "data/counties-albers-10m.json"),

		RefreshSchedule: strings.TrimSpace(os.Getenv("REFRESH_SCHEDULE")),
		FetchTimeout:    fetchTimeout,
	}
	s3 := LoadS3()
	cfg.S3Endpoint = s3.Endpoint
	cfg.S3Region = s3.Region
	cfg.S3AccessKey = s3.AccessKey
	cfg.S3SecretKey = s3.SecretKey
	cfg.S3UseSSL = s3.UseSSL

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// S3 holds the object store settings for s3:// sources.
type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// LoadS3 reads the S3_* variables. It does not validate them; an empty
// Endpoint means no object store is configured.
func LoadS3() S3 {
	return S3{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		UseSSL:    parseBool("S3_USE_SSL", true),
	}
}

func (c *Config) validate() error {
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if !c.RecipesEnabled && !c.CountiesEnabled {
		return errors.New("at least one of RECIPES_ENABLED or COUNTIES_ENABLED must be true")
	}
	if c.RecipesEnabled && c.RecipesURI == "" {
		return errors.New("RECIPES_URI is required when RECIPES_ENABLED is true")
	}
	if c.CountiesEnabled {
		required := []struct{ name, value string }{
			{"WORSHIP_URI", c.WorshipURI},
			{"POPULATION_URI", c.PopulationURI},
			{"TOPOLOGY_URI", c.TopologyURI},
		}
		for _, r := range required {
			if r.value == "" {
				return fmt.Errorf("%s is required when COUNTIES_ENABLED is true", r.name)
			}
		}
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err)
		}
	}
	if c.usesS3() {
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for s3:// sources")
		}
	}
	return nil
}

// SourceURIs returns the URIs of all enabled inputs.
func (c *Config) SourceURIs() []string {
	var uris []string
	if c.RecipesEnabled {
		uris = append(uris, c.RecipesURI)
	}
	if c.CountiesEnabled {
		uris = append(uris, c.WorshipURI, c.PopulationURI, c.TopologyURI)
	}
	return uris
}

func (c *Config) usesS3() bool {
	for _, uri := range c.SourceURIs() {
		if u, err := url.Parse(uri); err == nil && u.Scheme == "s3" {
			return true
		}
	}
	return false
}

func parseBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
