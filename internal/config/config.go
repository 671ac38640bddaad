package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "TOPIC_TRACKER_CONFIG"
	storeDirEnv      = "TOPIC_TRACKER_STORE_DIR"
	queriesDirEnv    = "TOPIC_TRACKER_QUERIES_DIR"
	minPopularityEnv = "TOPIC_TRACKER_MIN_POPULARITY"
	hnBaseURLEnv     = "TOPIC_TRACKER_HN_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Queries QueriesConfig `yaml:"queries"`
	Filter  FilterConfig  `yaml:"filter"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
	Sites   []SiteConfig  `yaml:"sites"`
}

// StoreConfig describes the period-partitioned file store location.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// QueriesConfig points at the directory of query definition files.
type QueriesConfig struct {
	Dir string `yaml:"dir"`
}

// FilterConfig sets the popularity admission threshold. PerSource overrides
// the global value; arXiv items carry no popularity signal, so the default
// config pins that source to 0. MinPopularity is a pointer so an explicit 0
// in the file is distinguishable from an absent key.
type FilterConfig struct {
	MinPopularity *int           `yaml:"minPopularity"`
	PerSource     map[string]int `yaml:"perSource"`
}

// HTTPConfig bounds outbound network calls.
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	RetryAttempts  int    `yaml:"retryAttempts"`
	HNBaseURL      string `yaml:"hnBaseUrl"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the concrete endpoints to crawl (e.g., arXiv category URLs).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. path wins over the TOPIC_TRACKER_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storeDirEnv); v != "" {
		c.Store.Dir = v
	}

	if v := os.Getenv(queriesDirEnv); v != "" {
		c.Queries.Dir = v
	}

	if v := os.Getenv(minPopularityEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Filter.MinPopularity = &n
		} else {
			log.Printf("config: invalid %s=%q, ignoring", minPopularityEnv, v)
		}
	}

	if v := os.Getenv(hnBaseURLEnv); v != "" {
		c.HTTP.HNBaseURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Store.Dir != "" {
		base.Store = override.Store
	}

	if override.Queries.Dir != "" {
		base.Queries = override.Queries
	}

	if override.Filter.MinPopularity != nil {
		base.Filter.MinPopularity = override.Filter.MinPopularity
	}
	if len(override.Filter.PerSource) > 0 {
		base.Filter.PerSource = override.Filter.PerSource
	}

	if override.HTTP.TimeoutSeconds != 0 {
		base.HTTP.TimeoutSeconds = override.HTTP.TimeoutSeconds
	}
	if override.HTTP.RetryAttempts != 0 {
		base.HTTP.RetryAttempts = override.HTTP.RetryAttempts
	}
	if override.HTTP.HNBaseURL != "" {
		base.HTTP.HNBaseURL = override.HTTP.HNBaseURL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	minPopularity := 10
	return Config{
		Store:   StoreConfig{Dir: "data/store"},
		Queries: QueriesConfig{Dir: "queries"},
		Filter: FilterConfig{
			MinPopularity: &minPopularity,
			PerSource:     map[string]int{"arxiv": 0},
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 20,
			RetryAttempts:  3,
			HNBaseURL:      "https://hn.algolia.com/api/v1",
		},
		Logging: LoggingConfig{Level: "info"},
		Sites: []SiteConfig{
			{
				Name:    "hn-front-page",
				Scanner: "hackernews",
				Options: map[string]string{"hitsPerPage": "30"},
			},
			{
				Name:    "arxiv-default",
				Scanner: "arxiv",
				Categories: []CategoryConfig{
					{Name: "cs.AI", URL: "https://arxiv.org/list/cs.AI/recent"},
				},
			},
		},
	}
}
