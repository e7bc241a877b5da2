package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/weather-ingest-service/internal/validation"
)

// defaultRoster is the reference city list used when neither the CITIES env
// var nor the config file names one.
var defaultRoster = []string{"London", "Paris", "New York", "Tokyo", "Sydney"}

// Config holds service configuration. Endpoints and secrets come from the
// environment (a .env file is honored when present); tunables and the roster
// may be overlaid from config/{ENV_NAME}.yaml. Missing required values are a
// startup-fatal error.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration // 0 = no client-side deadline

	StoreBackend          string // "memory", "redis" or "memcached"
	RedisURL              string
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
	StoreDatabase         string
	StoreContainer        string

	KafkaBrokers string // empty = event publishing disabled
	KafkaTopic   string

	Cities []string

	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Store struct {
		Backend   string `yaml:"backend"`
		Database  string `yaml:"database"`
		Container string `yaml:"container"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"store"`

	Events struct {
		Brokers string `yaml:"brokers"`
		Topic   string `yaml:"topic"`
	} `yaml:"events"`

	Roster struct {
		Cities []string `yaml:"cities"`
	} `yaml:"roster"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

// Load reads configuration from the environment, overlaid by an optional
// config/{ENV_NAME}.yaml (default dev). Env values win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional; prod sets real env vars

	fc, err := readFileConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, "8080")

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY is required")
	}
	cfg.WeatherAPIURL = firstNonEmpty(os.Getenv("WEATHER_API_URL"), fc.WeatherAPI.URL, "https://api.weatherapi.com/v1")
	// Default 0: the upstream call has no caller-imposed deadline.
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 0)

	cfg.StoreBackend = strings.TrimSpace(strings.ToLower(firstNonEmpty(os.Getenv("STORE_BACKEND"), fc.Store.Backend, "memory")))
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.MemcachedAddrs = firstNonEmpty(os.Getenv("MEMCACHED_ADDRS"), fc.Store.Memcached.Addrs)
	cfg.MemcachedTimeout = parseDuration(fc.Store.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Store.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	cfg.StoreDatabase = firstNonEmpty(os.Getenv("STORE_DATABASE"), fc.Store.Database)
	cfg.StoreContainer = firstNonEmpty(os.Getenv("STORE_CONTAINER"), fc.Store.Container)

	cfg.KafkaBrokers = firstNonEmpty(os.Getenv("KAFKA_BROKERS"), fc.Events.Brokers)
	cfg.KafkaTopic = firstNonEmpty(os.Getenv("KAFKA_TOPIC"), fc.Events.Topic, "weather-records")

	cfg.Cities, err = loadRoster(fc)
	if err != nil {
		return nil, err
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 2*time.Minute)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 250*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFileConfig parses config/{ENV_NAME}.yaml if present. A missing file is
// not an error; env alone can fully configure the service.
func readFileConfig() (*fileConfig, error) {
	var fc fileConfig

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fc, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &fc, nil
}

// loadRoster resolves the city roster from CITIES env (comma-separated), the
// config file, or the built-in default, and validates every entry.
func loadRoster(fc *fileConfig) ([]string, error) {
	var cities []string
	if raw := os.Getenv("CITIES"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cities = append(cities, c)
			}
		}
	} else if len(fc.Roster.Cities) > 0 {
		cities = fc.Roster.Cities
	} else {
		cities = defaultRoster
	}

	out := make([]string, 0, len(cities))
	for _, c := range cities {
		city, err := validation.ValidateCity(c, 2, 64)
		if err != nil {
			return nil, fmt.Errorf("roster city %q: %w", c, err)
		}
		out = append(out, city)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("roster must contain at least one city")
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative values pass through as-is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate enforces backend-specific required values after load.
func validate(cfg *Config) error {
	switch cfg.StoreBackend {
	case "memory":
		// no connection settings needed
	case "redis":
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	case "memcached":
		if cfg.MemcachedAddrs == "" {
			return fmt.Errorf("MEMCACHED_ADDRS is required when STORE_BACKEND=memcached")
		}
	default:
		return fmt.Errorf("store backend must be memory, redis or memcached, got %q", cfg.StoreBackend)
	}

	if cfg.StoreBackend != "memory" {
		if cfg.StoreDatabase == "" {
			return fmt.Errorf("STORE_DATABASE is required for backend %s", cfg.StoreBackend)
		}
		if cfg.StoreContainer == "" {
			return fmt.Errorf("STORE_CONTAINER is required for backend %s", cfg.StoreBackend)
		}
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return fmt.Errorf("port must be numeric, got %q", cfg.ServerPort)
	}
	return nil
}

// ContainerKeyspace returns the key namespace for the document store,
// "{database}:{container}".
func (c *Config) ContainerKeyspace() string {
	return c.StoreDatabase + ":" + c.StoreContainer
}
