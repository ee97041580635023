package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	coredatabase "github.com/m3rciful/intakebot/core/database"
	"github.com/m3rciful/intakebot/intake/handoff"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const (
	defaultSessionTTL     = 24 * time.Hour
	defaultSessionCleanup = 10 * time.Minute
	defaultCounterFile    = "data/request_counter.txt"
	defaultChannel        = "VoltHome (Бета)"
)

// SessionConfig selects the session store. TTL evicts abandoned conversations.
type SessionConfig struct {
	Backend         string        `yaml:"backend" envconfig:"SESSION_BACKEND" validate:"omitempty,oneof=memory redis"`
	TTL             time.Duration `yaml:"ttl" envconfig:"SESSION_TTL" validate:"gte=0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" validate:"gte=0"`
}

// CounterConfig selects where request numbers come from.
type CounterConfig struct {
	Backend  string `yaml:"backend" envconfig:"COUNTER_BACKEND" validate:"omitempty,oneof=file postgres redis"`
	FilePath string `yaml:"file_path" envconfig:"COUNTER_FILE"`
	RedisKey string `yaml:"redis_key"`
}

// EventsConfig enables publishing submitted requests to NATS JetStream.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" envconfig:"NATS_URL"`
	// Stream is created or updated on start when set.
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
}

// PromoConfig is the optional promotional discount. Fractions above the pricing cap are clamped when quoting.
type PromoConfig struct {
	Enabled  bool    `yaml:"enabled" envconfig:"PROMO_ENABLED"`
	Fraction float64 `yaml:"fraction" envconfig:"PROMO_FRACTION" validate:"gte=0"`
}

// IntakeConfig tunes the conversation.
type IntakeConfig struct {
	Promo   PromoConfig `yaml:"promo"`
	Welcome []string    `yaml:"welcome"`
	// Channel is the source tag shown in staff summaries.
	Channel string `yaml:"channel"`
}

// SenderConfig bounds retries of outbound Telegram calls.
type SenderConfig struct {
	MaxRetries   int           `yaml:"max_retries" validate:"gte=0"`
	RetryBackoff time.Duration `yaml:"retry_backoff" validate:"gte=0"`
	MaxDuration  time.Duration `yaml:"max_duration" validate:"gte=0"`
}

// Config is the full bot configuration: the shared core plus intake sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Sender   SenderConfig             `yaml:"sender"`
	Session  SessionConfig            `yaml:"session"`
	Counter  CounterConfig            `yaml:"counter"`
	Database coredatabase.Config      `yaml:"database"`
	Redis    coredatabase.RedisConfig `yaml:"redis"`
	Events   EventsConfig             `yaml:"events"`
	Intake   IntakeConfig             `yaml:"intake"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, overlays the environment and applies defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cross-section rules and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.Session.Backend = lower(c.Session.Backend, BackendMemory)
	c.Counter.Backend = lower(c.Counter.Backend, BackendFile)
	if err := coreconfig.Validate(c); err != nil {
		return err
	}

	if c.Session.TTL == 0 {
		c.Session.TTL = defaultSessionTTL
	}
	if c.Session.CleanupInterval == 0 {
		c.Session.CleanupInterval = defaultSessionCleanup
	}
	if c.Session.Backend == BackendRedis && !c.Redis.Enabled() {
		return fmt.Errorf("session.backend %q requires redis.url or redis.addr", BackendRedis)
	}

	switch c.Counter.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Counter.FilePath) == "" {
			c.Counter.FilePath = defaultCounterFile
		}
	case BackendPostgres:
		if !c.Database.Enabled() {
			return fmt.Errorf("counter.backend %q requires database.host", BackendPostgres)
		}
	case BackendRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("counter.backend %q requires redis.url or redis.addr", BackendRedis)
		}
	}

	if c.Events.NATSURL != "" && c.Events.Subject == "" {
		c.Events.Subject = handoff.DefaultSubject
	}
	if strings.TrimSpace(c.Intake.Channel) == "" {
		c.Intake.Channel = defaultChannel
	}
	welcome := c.Intake.Welcome[:0]
	for _, w := range c.Intake.Welcome {
		if w = strings.TrimSpace(w); w != "" {
			welcome = append(welcome, w)
		}
	}
	c.Intake.Welcome = welcome
	return nil
}

func lower(v, fallback string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return fallback
	}
	return v
}
