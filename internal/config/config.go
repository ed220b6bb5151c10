package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig     `mapstructure:"server"`
	Log          LogConfig        `mapstructure:"log"`
	Tracing      TracingConfig    `mapstructure:"tracing"`
	RateLimit    RateLimitConfig  `mapstructure:"rate_limit"`
	KeyGenerator string           `mapstructure:"key_generator" validate:"omitempty,oneof=simple_hash composite"`
	Backends     []BackendConfig  `mapstructure:"backends" validate:"dive"`
	Caches       []CacheConfig    `mapstructure:"caches" validate:"dive"`
	CallSites    []CallSiteConfig `mapstructure:"call_sites" validate:"dive"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// BackendConfig describes one storage backend. Several caches may share it.
type BackendConfig struct {
	Name      string          `mapstructure:"name" validate:"required"`
	Type      string          `mapstructure:"type" validate:"required,oneof=memory lru redis memcached"`
	Size      int             `mapstructure:"size" validate:"gte=0"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Memcached MemcachedConfig `mapstructure:"memcached"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db" validate:"gte=0"`
	Prefix      string        `mapstructure:"prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type MemcachedConfig struct {
	Servers []string      `mapstructure:"servers"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig defines a named cache region. TTL is in seconds; 0 disables
// expiration.
type CacheConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Backend string `mapstructure:"backend" validate:"required"`
	TTL     int    `mapstructure:"ttl" validate:"gte=0"`
}

// CallSiteConfig is the declarative caching metadata of one call site.
type CallSiteConfig struct {
	Site       string   `mapstructure:"site" validate:"required"`
	Mode       string   `mapstructure:"mode" validate:"required"`
	CacheNames []string `mapstructure:"cache_names" validate:"required,min=1,dive,required"`
	Key        string   `mapstructure:"key"`
	AllEntries bool     `mapstructure:"all_entries"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(paths ...string) (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "cachekit")
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("key_generator", "simple_hash")

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if len(cfg.Backends) == 0 && len(cfg.Caches) == 0 {
		cfg.applyDefaultTopology()
	}

	return &cfg, nil
}

// applyDefaultTopology gives a config without backends one in-memory backend
// and the caches used by the catalog service.
func (c *Config) applyDefaultTopology() {
	c.Backends = []BackendConfig{{Name: "local", Type: "memory"}}
	c.Caches = []CacheConfig{{Name: "products", Backend: "local", TTL: 300}}
	if len(c.CallSites) == 0 {
		c.CallSites = []CallSiteConfig{
			{Site: "catalog.Find", Mode: "cacheable", CacheNames: []string{"products"}, Key: "sku"},
			{Site: "catalog.Save", Mode: "update", CacheNames: []string{"products"}, Key: "result.sku"},
		}
	}
}

// Validate checks field constraints and the references between backends,
// caches and call sites.
func (c *Config) Validate() error {
	if err := domain.Validator().Struct(c); err != nil {
		fields := domain.ParseValidationError(err)
		msgs := make([]string, 0, len(fields))
		for field, msg := range fields {
			msgs = append(msgs, field+": "+msg)
		}
		slices.Sort(msgs)
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	var errs []error
	backends := make(map[string]BackendConfig, len(c.Backends))
	for _, b := range c.Backends {
		if _, dup := backends[b.Name]; dup {
			errs = append(errs, fmt.Errorf("backend %q defined twice", b.Name))
		}
		backends[b.Name] = b
		switch {
		case b.Type == "redis" && b.Redis.Addr == "":
			errs = append(errs, fmt.Errorf("backend %q: redis.addr is required", b.Name))
		case b.Type == "memcached" && len(b.Memcached.Servers) == 0:
			errs = append(errs, fmt.Errorf("backend %q: memcached.servers is required", b.Name))
		}
	}

	caches := make(map[string]struct{}, len(c.Caches))
	for _, cc := range c.Caches {
		if _, dup := caches[cc.Name]; dup {
			errs = append(errs, fmt.Errorf("cache %q defined twice", cc.Name))
		}
		caches[cc.Name] = struct{}{}
		if _, ok := backends[cc.Backend]; !ok {
			errs = append(errs, fmt.Errorf("cache %q: unknown backend %q", cc.Name, cc.Backend))
		}
	}

	for _, site := range c.CallSites {
		if _, err := domain.ParseMode(site.Mode); err != nil {
			errs = append(errs, fmt.Errorf("call site %q: %w", site.Site, err))
		}
		for _, name := range site.CacheNames {
			if _, ok := caches[name]; !ok {
				errs = append(errs, fmt.Errorf("call site %q: unknown cache %q", site.Site, name))
			}
		}
	}

	return errors.Join(errs...)
}

// TTLDuration returns the cache expiration as a duration.
func (c CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// Metadata converts the call site into interceptor metadata.
func (s CallSiteConfig) Metadata() (domain.CacheMetadata, error) {
	mode, err := domain.ParseMode(s.Mode)
	if err != nil {
		return domain.CacheMetadata{}, err
	}
	return domain.CacheMetadata{
		Site:          s.Site,
		Mode:          mode,
		CacheNames:    append([]string(nil), s.CacheNames...),
		KeyExpression: s.Key,
		AllEntries:    s.AllEntries,
	}, nil
}
