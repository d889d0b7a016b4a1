package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr         string          `yaml:"addr"`
	APITimeout   time.Duration   `yaml:"timeout"`
	DatabasePath string          `yaml:"database_path"`
	Embedding    EmbeddingConfig `yaml:"embedding"`
	Crawler      CrawlerConfig   `yaml:"crawler"`
}

// EmbeddingConfig configures the text-embedding backend. An empty APIKey is
// a first-class runtime state for the openai provider: the matcher degrades
// to unranked results instead of failing.
type EmbeddingConfig struct {
	Provider                string        `yaml:"provider"` // "openai" or "ollama"
	BaseURL                 string        `yaml:"base_url"`
	APIKey                  string        `yaml:"api_key"`
	Model                   string        `yaml:"model"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

type CrawlerConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SearchURL     string        `yaml:"search_url"`
	BaseURL       string        `yaml:"base_url"`
	APIAccessKey  string        `yaml:"api_access_key"`
	Keywords      []string      `yaml:"keywords"`
	IntervalHours int           `yaml:"interval_hours"`
	MaxPages      int           `yaml:"max_pages"`
	MaxPostings   int           `yaml:"max_postings"`
	FetchDetails  bool          `yaml:"fetch_details"`
	RequestDelay  time.Duration `yaml:"request_delay"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	StaleDays     int           `yaml:"stale_days"`
}

// DefaultKeywords seeds the crawl cycle when no keywords are configured.
var DefaultKeywords = []string{
	"백엔드 개발자",
	"프론트엔드 개발자",
	"풀스택 개발자",
	"데이터 엔지니어",
	"AI 엔지니어",
	"DevOps",
	"iOS 개발자",
	"Android 개발자",
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:         getEnv("JOBSCOUT_ADDR", ":8080"),
		APITimeout:   15 * time.Second,
		DatabasePath: getEnv("JOBSCOUT_DATABASE_PATH", "jobscout.db"),
		Embedding: EmbeddingConfig{
			Provider:                getEnv("JOBSCOUT_EMBEDDING_PROVIDER", "openai"),
			BaseURL:                 getEnv("JOBSCOUT_EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			APIKey:                  getEnv("JOBSCOUT_EMBEDDING_API_KEY", ""),
			Model:                   getEnv("JOBSCOUT_EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout:                 20 * time.Second,
			Retries:                 2,
			Backoff:                 500 * time.Millisecond,
			CircuitFailureThreshold: 5,
			CircuitReset:            30 * time.Second,
		},
		Crawler: CrawlerConfig{
			Enabled:       getEnvBool("JOBSCOUT_CRAWL_ENABLED", true),
			SearchURL:     getEnv("JOBSCOUT_CRAWL_SEARCH_URL", "https://www.saramin.co.kr/zf_user/search/recruit"),
			BaseURL:       getEnv("JOBSCOUT_CRAWL_BASE_URL", "https://www.saramin.co.kr"),
			APIAccessKey:  getEnv("JOBSCOUT_SARAMIN_API_KEY", ""),
			Keywords:      splitKeywords(getEnv("JOBSCOUT_CRAWL_KEYWORDS", "")),
			IntervalHours: getEnvInt("JOBSCOUT_CRAWL_INTERVAL_HOURS", 6),
			MaxPages:      3,
			MaxPostings:   30,
			FetchDetails:  true,
			RequestDelay:  1500 * time.Millisecond,
			HTTPTimeout:   20 * time.Second,
			StaleDays:     30,
		},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.Crawler.Keywords) == 0 {
		cfg.Crawler.Keywords = DefaultKeywords
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
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

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
