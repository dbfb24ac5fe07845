// Package config loads server settings: compiled-in defaults, then an
// optional YAML file, then EVENTREG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"

	"eventreg/internal/platform/database"
	"eventreg/internal/platform/tracer"
	"eventreg/internal/ratelimit"
	"eventreg/internal/registration/models"
)

// EnvPrefix namespaces every environment override, e.g. EVENTREG_AUTH_SIGNING_KEY.
const EnvPrefix = "EVENTREG"

// DevSigningKey is the signing key used when none is configured. It is
// rejected in production.
const DevSigningKey = "dev-secret-key-change-in-production"

const EnvironmentProduction = "production"

// Server captures everything cmd/server and regctl need.
type Server struct {
	Addr            string                `mapstructure:"addr"`
	Environment     string                `mapstructure:"environment"`
	LogLevel        string                `mapstructure:"log_level"`
	RequestTimeout  time.Duration         `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration         `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string              `mapstructure:"trusted_proxies"`
	Database        database.Config       `mapstructure:"database"`
	Auth            Auth                  `mapstructure:"auth"`
	Audit           Audit                 `mapstructure:"audit"`
	Export          Export                `mapstructure:"export"`
	Tracing         tracer.ProviderConfig `mapstructure:"tracing"`
	RateLimit       ratelimit.Config      `mapstructure:"ratelimit"`
	Catalog         models.Catalog        `mapstructure:"catalog"`
}

// Auth configures staff bearer tokens.
type Auth struct {
	SigningKey string        `mapstructure:"signing_key"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// Audit configures the audit publisher. A zero buffer persists synchronously.
type Audit struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// Export configures the CSV encoder.
type Export struct {
	TimeZone      string `mapstructure:"time_zone"`
	LegacyQuoting bool   `mapstructure:"legacy_quoting"`
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig()
	catalog := models.DefaultCatalog()

	v.SetDefault("addr", ":8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("trusted_proxies", []string{})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.ping_timeout", db.PingTimeout)

	v.SetDefault("auth.signing_key", DevSigningKey)
	v.SetDefault("auth.issuer", "eventreg")
	v.SetDefault("auth.audience", "eventreg-dashboard")
	v.SetDefault("auth.token_ttl", 8*time.Hour)

	v.SetDefault("audit.buffer_size", 0)

	v.SetDefault("export.time_zone", "America/Sao_Paulo")
	v.SetDefault("export.legacy_quoting", false)

	tracing := tracer.DefaultProviderConfig()
	v.SetDefault("tracing.enabled", tracing.Enabled)
	v.SetDefault("tracing.exporter", tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", tracing.SampleRate)
	v.SetDefault("tracing.service_name", tracing.ServiceName)

	limits := ratelimit.DefaultConfig()
	v.SetDefault("ratelimit.enabled", limits.Enabled)
	v.SetDefault("ratelimit.requests", limits.Requests)
	v.SetDefault("ratelimit.window", limits.Window)
	v.SetDefault("ratelimit.sweep_interval", limits.SweepInterval)

	levels := make([]map[string]any, 0, len(catalog.Levels))
	for _, l := range catalog.Levels {
		levels = append(levels, map[string]any{"value": l.Value, "label": l.Label})
	}
	v.SetDefault("catalog.departments", catalog.Departments)
	v.SetDefault("catalog.levels", levels)
	v.SetDefault("catalog.first_day", catalog.FirstDay.String())
	v.SetDefault("catalog.last_day", catalog.LastDay.String())
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply.
func Load(path string) (Server, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Server{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return Server{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Server) Validate() error {
	var errs []error
	if c.Auth.SigningKey == "" {
		errs = append(errs, errors.New("auth.signing_key is required"))
	}
	if c.Environment == EnvironmentProduction && c.Auth.SigningKey == DevSigningKey {
		errs = append(errs, errors.New("auth.signing_key must be changed in production"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Audit.BufferSize < 0 {
		errs = append(errs, errors.New("audit.buffer_size must not be negative"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ExportLocation(); err != nil {
		errs = append(errs, err)
	}
	switch c.Tracing.Exporter {
	case tracer.ExporterNone, tracer.ExporterStdout, tracer.ExporterOTLP, "":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter %q is not one of none, stdout, otlp", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, errors.New("tracing.sample_rate must be between 0 and 1"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit.requests and ratelimit.window must be positive when enabled"))
	}
	errs = append(errs, validateCatalog(c.Catalog)...)
	return errors.Join(errs...)
}

func validateCatalog(c models.Catalog) []error {
	var errs []error
	if len(c.Departments) == 0 {
		errs = append(errs, errors.New("catalog.departments must not be empty"))
	}
	if len(c.Levels) == 0 {
		errs = append(errs, errors.New("catalog.levels must not be empty"))
	}
	first, err := models.ParseDay(c.FirstDay.String())
	if err != nil {
		errs = append(errs, fmt.Errorf("catalog.first_day: %w", err))
	}
	last, err := models.ParseDay(c.LastDay.String())
	if err != nil {
		errs = append(errs, fmt.Errorf("catalog.last_day: %w", err))
	}
	if len(errs) == 0 && last.Before(first) {
		errs = append(errs, errors.New("catalog.last_day is before catalog.first_day"))
	}
	return errs
}

// TrustedProxyPrefixes parses trusted_proxies. Bare addresses become
// single-host prefixes.
func (c Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// ExportLocation is the time zone CSV timestamps are rendered in.
func (c Server) ExportLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Export.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("export.time_zone: %w", err)
	}
	return loc, nil
}

// InMemory reports whether no database is configured.
func (c Server) InMemory() bool {
	return c.Database.URL == ""
}
