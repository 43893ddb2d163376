package journal

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Duration parses "200ms"/"30s" style values from both YAML and
// environment variables.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type FeedConfig struct {
	// BaseURL is the scraper sidecar's JSON page endpoint.
	BaseURL       string   `yaml:"base_url" env:"JW_FEED_URL"`
	Timeout       Duration `yaml:"timeout" env:"JW_FEED_TIMEOUT"`
	MaxPages      int      `yaml:"max_pages" env:"JW_MAX_PAGES"`
	MaxEmptyPages int      `yaml:"max_empty_pages" env:"JW_MAX_EMPTY_PAGES"`
}

func (c FeedConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.MaxPages, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxEmptyPages, validation.Required, validation.Min(1)),
	)
}

type StateConfig struct {
	Dir string   `yaml:"dir" env:"JW_STATE_DIR"`
	TTL Duration `yaml:"ttl" env:"JW_EVENT_TTL"`
}

func (c StateConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// ArchiveConfig points at the best-effort sqlite archive. An empty path
// disables archiving.
type ArchiveConfig struct {
	Path string `yaml:"path" env:"JW_ARCHIVE_PATH"`
}

type WorldConfig struct {
	Path string `yaml:"path" env:"JW_WORLD_FILE"`
	// Roles maps empire display names to chat role mentions pinged on
	// non-silent channels.
	Roles map[string]string `yaml:"roles"`
}

func (c WorldConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required),
	)
}

// WebhooksConfig carries one endpoint per channel. URLs are secrets and are
// normally supplied through the environment rather than the YAML file.
type WebhooksConfig struct {
	Events   string `yaml:"events" env:"JW_WEBHOOK_EVENTS"`
	Stats    string `yaml:"stats" env:"JW_WEBHOOK_STATS"`
	Tunnel   string `yaml:"tunnel" env:"JW_WEBHOOK_TUNNEL"`
	War      string `yaml:"war" env:"JW_WEBHOOK_WAR"`
	Crime    string `yaml:"crime" env:"JW_WEBHOOK_CRIME"`
	Research string `yaml:"research" env:"JW_WEBHOOK_RESEARCH"`
	Speeches string `yaml:"speeches" env:"JW_WEBHOOK_SPEECHES"`
	Rumors   string `yaml:"rumors" env:"JW_WEBHOOK_RUMORS"`
	Politics string `yaml:"politics" env:"JW_WEBHOOK_POLITICS"`
	Finance  string `yaml:"finance" env:"JW_WEBHOOK_FINANCE"`
	// Silent lists channels that never ping empire roles.
	Silent []string `yaml:"silent"`
}

// URL resolves a channel to its endpoint, empty when unconfigured.
func (c WebhooksConfig) URL(ch Channel) string {
	switch ch {
	case ChannelEvents:
		return c.Events
	case ChannelStats:
		return c.Stats
	case ChannelTunnel:
		return c.Tunnel
	case ChannelWar:
		return c.War
	case ChannelCrime:
		return c.Crime
	case ChannelResearch:
		return c.Research
	case ChannelSpeeches:
		return c.Speeches
	case ChannelRumors:
		return c.Rumors
	case ChannelPolitics:
		return c.Politics
	case ChannelFinance:
		return c.Finance
	default:
		return ""
	}
}

func (c WebhooksConfig) IsSilent(ch Channel) bool {
	for _, s := range c.Silent {
		if Channel(s) == ch {
			return true
		}
	}
	return false
}

type DeliveryConfig struct {
	Timeout        Duration `yaml:"timeout" env:"JW_DELIVERY_TIMEOUT"`
	EventPageDelay Duration `yaml:"event_page_delay" env:"JW_EVENT_PAGE_DELAY"`
	StatsPageDelay Duration `yaml:"stats_page_delay" env:"JW_STATS_PAGE_DELAY"`
	// ExcludeFinanceFromTopics drops financial events from every topical
	// channel, not just the default stream. The observed rule sets disagree
	// on this, so it is an explicit switch rather than inferred behavior.
	ExcludeFinanceFromTopics *bool `yaml:"exclude_finance_from_topics" env:"JW_EXCLUDE_FINANCE_FROM_TOPICS"`
}

func (c DeliveryConfig) FinanceExcluded() bool {
	if c.ExcludeFinanceFromTopics == nil {
		return true
	}
	return *c.ExcludeFinanceFromTopics
}

type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	State    StateConfig    `yaml:"state"`
	Archive  ArchiveConfig  `yaml:"archive"`
	World    WorldConfig    `yaml:"world"`
	Webhooks WebhooksConfig `yaml:"webhooks"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Limits   Limits         `yaml:"-"`
	Debug    bool           `yaml:"debug" env:"JW_DEBUG"`
}

func (c *Config) Validate() error {
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.State.Validate(); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if err := c.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

// NewDefaultConfig mirrors the production posture: conservative paging
// bounds, 30-day re-admission TTL, courtesy delays under the sink's rate
// limit, the two traditionally silent channels.
func NewDefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			Timeout:       Duration(30 * time.Second),
			MaxPages:      500,
			MaxEmptyPages: 5,
		},
		State: StateConfig{
			Dir: "data",
			TTL: Duration(DefaultTTL),
		},
		World: WorldConfig{
			Path: "config/territories.yaml",
		},
		Webhooks: WebhooksConfig{
			Silent: []string{string(ChannelTunnel), string(ChannelEvents)},
		},
		Delivery: DeliveryConfig{
			Timeout:        Duration(15 * time.Second),
			EventPageDelay: Duration(200 * time.Millisecond),
			StatsPageDelay: Duration(300 * time.Millisecond),
		},
		Limits: DefaultLimits(),
	}
}

// LoadConfig layers the YAML file (optional) and environment overrides over
// the defaults, then validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
