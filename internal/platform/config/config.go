package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultStoreTimeout = 30 * time.Second
	defaultSyncInterval = 15 * time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Feed     FeedConfig
	Store    StoreConfig
	Taxonomy TaxonomyConfig
	Sync     SyncConfig
}

// ServerConfig configures the ops HTTP server.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FeedConfig holds the source feed endpoint and its header credentials.
type FeedConfig struct {
	URL   string
	Email string
	Token string
}

// StoreConfig holds the storefront REST API root and consumer credentials.
type StoreConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

// TaxonomyConfig supplies the fixed parent ids that partition the store's
// category tree into the category, vendor and tag groups. They are imposed
// on resolved nodes, never discovered.
type TaxonomyConfig struct {
	CategoryParent int64
	VendorParent   int64
	TagParent      int64
}

// SyncConfig controls the run scheduler.
type SyncConfig struct {
	Interval   time.Duration
	RunOnStart bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided
// maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides and
// environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "SYNC_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SYNC_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SYNC_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SYNC_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Feed: FeedConfig{
			URL:   stringWithDefault(lookup, "SYNC_FEED_URL", ""),
			Email: stringWithDefault(lookup, "SYNC_FEED_EMAIL", ""),
			Token: stringWithDefault(lookup, "SYNC_FEED_TOKEN", ""),
		},
		Store: StoreConfig{
			BaseURL:        stringWithDefault(lookup, "SYNC_STORE_URL", ""),
			ConsumerKey:    stringWithDefault(lookup, "SYNC_STORE_CONSUMER_KEY", ""),
			ConsumerSecret: stringWithDefault(lookup, "SYNC_STORE_CONSUMER_SECRET", ""),
			Timeout:        durationWithDefault(lookup, "SYNC_STORE_TIMEOUT", defaultStoreTimeout),
		},
		Taxonomy: TaxonomyConfig{
			CategoryParent: int64WithDefault(lookup, "SYNC_TAXONOMY_CATEGORY_PARENT", 0),
			VendorParent:   int64WithDefault(lookup, "SYNC_TAXONOMY_VENDOR_PARENT", 0),
			TagParent:      int64WithDefault(lookup, "SYNC_TAXONOMY_TAG_PARENT", 0),
		},
		Sync: SyncConfig{
			Interval:   durationWithDefault(lookup, "SYNC_INTERVAL", defaultSyncInterval),
			RunOnStart: boolWithDefault(lookup, "SYNC_RUN_ON_START", true),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Feed.URL) == "" {
		missing = append(missing, "Feed.URL")
	}
	if strings.TrimSpace(cfg.Feed.Email) == "" {
		missing = append(missing, "Feed.Email")
	}
	if strings.TrimSpace(cfg.Feed.Token) == "" {
		missing = append(missing, "Feed.Token")
	}
	if strings.TrimSpace(cfg.Store.BaseURL) == "" {
		missing = append(missing, "Store.BaseURL")
	}
	if strings.TrimSpace(cfg.Store.ConsumerKey) == "" {
		missing = append(missing, "Store.ConsumerKey")
	}
	if strings.TrimSpace(cfg.Store.ConsumerSecret) == "" {
		missing = append(missing, "Store.ConsumerSecret")
	}
	if cfg.Taxonomy.CategoryParent <= 0 {
		missing = append(missing, "Taxonomy.CategoryParent")
	}
	if cfg.Taxonomy.VendorParent <= 0 {
		missing = append(missing, "Taxonomy.VendorParent")
	}
	if cfg.Taxonomy.TagParent <= 0 {
		missing = append(missing, "Taxonomy.TagParent")
	}
	if cfg.Sync.Interval <= 0 {
		missing = append(missing, "Sync.Interval")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func int64WithDefault(lookup func(string) (string, bool), key string, fallback int64) int64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
