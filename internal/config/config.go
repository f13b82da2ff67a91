// Package config loads the catalog service configuration: built-in defaults,
// then an optional TOML file with ${VAR} substitution, then environment
// overrides. The result is checked with Validate.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Metrics   MetricsConfig   `toml:"metrics"`
	CORS      CORSConfig      `toml:"cors"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type ServerConfig struct {
	Port     int    `toml:"port" validate:"min=1,max=65535"`
	LogLevel string `toml:"log_level" validate:"oneof=debug info warn error"`
}

type CatalogConfig struct {
	// Source selects where movies come from. For "file" an empty Path means
	// the data set bundled into the binary.
	Source      string        `toml:"source" validate:"oneof=file postgres sqlite"`
	Path        string        `toml:"path"`
	DSN         string        `toml:"dsn" validate:"required_unless=Source file"`
	LoadTimeout time.Duration `toml:"load_timeout" validate:"gt=0s"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Token   string `toml:"token" validate:"required_if=Enabled true"`
}

type CORSConfig struct {
	TrustedOrigins []string `toml:"trusted_origins" validate:"dive,url"`
}

// RateLimitConfig throttles the JSON search API per client IP. RPS 0 turns
// the limiter off. X-Forwarded-For is only read from TrustedProxies.
type RateLimitConfig struct {
	RPS            float64  `toml:"rps" validate:"gte=0"`
	Burst          int      `toml:"burst" validate:"required_with=RPS,gte=0"`
	TrustedProxies []string `toml:"trusted_proxies" validate:"dive,cidr|ip"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8082,
			LogLevel: "info",
		},
		Catalog: CatalogConfig{
			Source:      SourceFile,
			LoadTimeout: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data), os.LookupEnv)
	if len(missing) > 0 {
		return fmt.Errorf("config references unset environment variables: %s", strings.Join(missing, ", "))
	}

	meta, err := toml.Decode(content, cfg)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("parsing config: unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR} with the variable's value and reports
// the names that are not set.
func substituteEnvVars(content string, lookup func(string) (string, bool)) (string, []string) {
	seen := make(map[string]struct{})
	var missing []string

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := lookup(name); ok {
			return v
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			missing = append(missing, name)
		}
		return match
	})

	sort.Strings(missing)
	return out, missing
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	str("LOG_LEVEL", &cfg.Server.LogLevel)

	str("CATALOG_SOURCE", &cfg.Catalog.Source)
	str("CATALOG_PATH", &cfg.Catalog.Path)
	str("DATABASE_URL", &cfg.Catalog.DSN)

	if v, ok := lookup("METRICS_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = enabled
	}
	str("METRICS_TOKEN", &cfg.Metrics.Token)

	if v, ok := lookup("CORS_TRUSTED_ORIGINS"); ok && v != "" {
		cfg.CORS.TrustedOrigins = splitList(v)
	}

	if v, ok := lookup("SEARCH_RATE_LIMIT"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SEARCH_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit.RPS = rps
	}
	if v, ok := lookup("SEARCH_RATE_BURST"); ok && v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEARCH_RATE_BURST: %w", err)
		}
		cfg.RateLimit.Burst = burst
	}
	if v, ok := lookup("SEARCH_TRUSTED_PROXIES"); ok && v != "" {
		cfg.RateLimit.TrustedProxies = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
