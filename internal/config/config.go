package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"contactrelay/pkg/config"
)

const gmailHost = "smtp.gmail.com"

type RelayConfig struct {
	// StrictValidation rejects submissions with missing fields or a malformed
	// email with 400 instead of attempting a send.
	StrictValidation bool `yaml:"strict_validation"`
	// Deduplicate answers a repeated identical submission within DedupTTL
	// without sending it again. Needs redis.addr. Off unless set explicitly.
	Deduplicate bool          `yaml:"deduplicate"`
	DedupTTL    time.Duration `yaml:"dedup_ttl"`
}

type Config struct {
	Server config.ServerConfig `yaml:"server"`
	Mail   config.MailConfig   `yaml:"mail"`
	CORS   config.CORSConfig   `yaml:"cors"`
	Redis  config.RedisConfig  `yaml:"redis"`
	Log    config.LogConfig    `yaml:"log"`
	Relay  RelayConfig         `yaml:"relay"`
}

// Load reads the relay configuration for CONFIG_ENV from CONFIG_DIR and exits
// on failure.
func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfg, err := LoadFrom(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LoadFrom loads, overrides from the environment, applies defaults and
// validates.
func LoadFrom(env, configDir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := config.Decode(cfgMap, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideMailFromEnv(&cfg.Mail)
	config.OverrideCORSFromEnv(&cfg.CORS)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideLogFromEnv(&cfg.Log)

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":3000"
	}
	if strings.EqualFold(c.Mail.Service, "gmail") && c.Mail.Host == "" {
		c.Mail.Host = gmailHost
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Mail.SenderAddress == "" {
		c.Mail.SenderAddress = c.Mail.Username
	}
	if c.Relay.DedupTTL <= 0 {
		c.Relay.DedupTTL = 10 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports missing mail settings and an unusable CORS origin.
func (c *Config) Validate() error {
	var errs []error
	if c.Mail.Host == "" {
		errs = append(errs, errors.New("mail.host is required (or mail.service: gmail)"))
	}
	if c.Mail.Recipient == "" {
		errs = append(errs, errors.New("mail.recipient is required"))
	}
	if c.CORS.AllowedOrigin == "" {
		errs = append(errs, errors.New("cors.allowed_origin is required"))
	} else if _, _, err := NormalizeOrigin(c.CORS.AllowedOrigin); err != nil {
		errs = append(errs, err)
	}
	if c.Relay.Deduplicate && c.Redis.Addr == "" {
		errs = append(errs, errors.New("relay.deduplicate requires redis.addr"))
	}
	return errors.Join(errs...)
}

// NormalizeOrigin reduces a configured origin to scheme://host[:port].
// Browsers never send a path in the Origin header, so an origin configured
// with one (e.g. "http://localhost:8000/send-email/") could never match.
// trimmed reports whether anything was dropped.
func NormalizeOrigin(origin string) (normalized string, trimmed bool, err error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", false, fmt.Errorf("invalid cors.allowed_origin %q: %w", origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false, fmt.Errorf("invalid cors.allowed_origin %q: want http(s)://host[:port]", origin)
	}
	normalized = u.Scheme + "://" + u.Host
	return normalized, normalized != strings.TrimSpace(origin), nil
}
