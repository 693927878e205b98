package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ResearchBriefing/internal/keyword"
	"ResearchBriefing/internal/state"
)

const (
	defaultTimezone = "Asia/Tokyo"

	configPathEnv     = "RESEARCH_BRIEF_CONFIG"
	statePathEnv      = "RESEARCH_BRIEF_STATE"
	slackTokenEnv     = "SLACK_BOT_TOKEN"
	slackChannelEnv   = "SLACK_CHANNEL_ID"
	logLevelEnv       = "RESEARCH_BRIEF_LOG_LEVEL"
	defaultConfigFile = "config.yml"
)

// Config holds high-level settings required across the application.
type Config struct {
	State    StateConfig    `yaml:"state"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Arxiv    ArxivConfig    `yaml:"arxiv"`
	Blogs    []FeedConfig   `yaml:"blog_feeds"`
	Slack    SlackConfig    `yaml:"slack"`
	Keywords []keyword.Rule `yaml:"keywords"`
	Logging  LoggingConfig  `yaml:"logging"`
	Timezone string         `yaml:"timezone"`

	location *time.Location
	matcher  *keyword.Matcher
}

// StateConfig locates the persisted state blob and its retention windows.
type StateConfig struct {
	Path string `yaml:"path"`
	// BlogRetentionDays covers notified blog URLs and cross-references.
	BlogRetentionDays int `yaml:"blogRetentionDays"`
	// BufferRetentionDays bounds daily buffer entries; the briefing
	// normally consumes them first, this is a safety net.
	BufferRetentionDays int `yaml:"bufferRetentionDays"`
}

// FetchConfig defines the look-back window shared by all sources.
type FetchConfig struct {
	Hours      int `yaml:"hours"`
	MaxResults int `yaml:"maxResults"`
}

// ArxivConfig describes the arXiv API endpoint and tracked categories.
type ArxivConfig struct {
	APIURL     string   `yaml:"apiUrl"`
	Categories []string `yaml:"categories"`
}

// FeedConfig describes a single blog RSS feed.
type FeedConfig struct {
	Source string `yaml:"source"`
	URL    string `yaml:"url"`
}

// SlackConfig wires all data required to post the briefing.
type SlackConfig struct {
	BotToken  string `yaml:"botToken"`
	ChannelID string `yaml:"channelId"`
	OutDir    string `yaml:"outDir"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Location resolves the configured briefing timezone.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	return time.UTC
}

// Matcher returns the keyword matcher compiled during Load.
func (c Config) Matcher() *keyword.Matcher {
	return c.matcher
}

// Window is the fetch look-back window as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.Fetch.Hours) * time.Hour
}

// Retention derives the state retention windows. Paper ids are kept for
// the fetch window plus 24h to cover timing edge cases.
func (c Config) Retention() state.Retention {
	return state.Retention{
		PaperMaxAge: c.Window() + 24*time.Hour,
		BlogMaxAge:  time.Duration(c.State.BlogRetentionDays) * 24 * time.Hour,
		BufferDays:  c.State.BufferRetentionDays,
	}
}

// Load reads YAML configuration (if present), applies environment
// overrides, and validates the result. A malformed file, an unknown
// timezone, or an uncompilable keyword pattern fails here, before any
// fetching or delivery occurs.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}

	matcher, err := keyword.Compile(cfg.Keywords)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.matcher = matcher

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(statePathEnv); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv(slackTokenEnv); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv(slackChannelEnv); v != "" {
		c.Slack.ChannelID = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: unknown timezone %s: %w", tz, err)
	}
	c.location = loc
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.State.Path != "" {
		base.State.Path = override.State.Path
	}
	if override.State.BlogRetentionDays > 0 {
		base.State.BlogRetentionDays = override.State.BlogRetentionDays
	}
	if override.State.BufferRetentionDays > 0 {
		base.State.BufferRetentionDays = override.State.BufferRetentionDays
	}

	if override.Fetch.Hours > 0 {
		base.Fetch.Hours = override.Fetch.Hours
	}
	if override.Fetch.MaxResults > 0 {
		base.Fetch.MaxResults = override.Fetch.MaxResults
	}

	if override.Arxiv.APIURL != "" {
		base.Arxiv.APIURL = override.Arxiv.APIURL
	}
	if len(override.Arxiv.Categories) > 0 {
		base.Arxiv.Categories = override.Arxiv.Categories
	}

	if len(override.Blogs) > 0 {
		base.Blogs = override.Blogs
	}

	if override.Slack.BotToken != "" {
		base.Slack.BotToken = override.Slack.BotToken
	}
	if override.Slack.ChannelID != "" {
		base.Slack.ChannelID = override.Slack.ChannelID
	}
	if override.Slack.OutDir != "" {
		base.Slack.OutDir = override.Slack.OutDir
	}

	if len(override.Keywords) > 0 {
		base.Keywords = override.Keywords
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Timezone != "" {
		base.Timezone = override.Timezone
	}

	return base
}

func defaultConfig() Config {
	return Config{
		State: StateConfig{
			Path:                "state.json",
			BlogRetentionDays:   30,
			BufferRetentionDays: 3,
		},
		Fetch: FetchConfig{Hours: 48, MaxResults: 200},
		Arxiv: ArxivConfig{
			APIURL:     "https://export.arxiv.org/api/query",
			Categories: []string{"cs.AI", "cs.LG", "stat.ML"},
		},
		Blogs: []FeedConfig{
			{Source: "Google Research", URL: "https://blog.research.google/feeds/posts/default?alt=rss"},
			{Source: "DeepMind", URL: "https://deepmind.google/blog/rss.xml"},
			{Source: "OpenAI", URL: "https://openai.com/blog/rss.xml"},
		},
		Slack: SlackConfig{OutDir: "out"},
		Keywords: []keyword.Rule{
			{Label: "Google", Pattern: "Google"},
			{Label: "DeepMind", Pattern: "DeepMind"},
			{Label: "Meta", Pattern: "Meta", CaseSensitive: true},
			{Label: "FAIR", Pattern: "FAIR", CaseSensitive: true},
			{Label: "FAIR", Pattern: "Facebook AI Research"},
			{Label: "OpenAI", Pattern: "OpenAI"},
			{Label: "Anthropic", Pattern: "Anthropic"},
		},
		Logging:  LoggingConfig{Level: "info"},
		Timezone: defaultTimezone,
	}
}
