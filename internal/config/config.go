package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "TWEET_CLEANER_CONFIG"
	logLevelEnv     = "LOG_LEVEL"

	bearerTokenEnv       = "TWITTER_BEARER_TOKEN"
	consumerKeyEnv       = "TWITTER_CONSUMER_KEY"
	consumerSecretEnv    = "TWITTER_CONSUMER_SECRET"
	accessTokenEnv       = "TWITTER_ACCESS_TOKEN"
	accessTokenSecretEnv = "TWITTER_ACCESS_TOKEN_SECRET"
	usernameEnv          = "TWITTER_USERNAME"

	ollamaHostEnv  = "OLLAMA_HOST"
	ollamaModelEnv = "OLLAMA_MODEL"

	archiveDriverEnv  = "ARCHIVE_DRIVER"
	archiveDSNEnv     = "ARCHIVE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// EnvFiles are loaded (without overriding the real environment) before overrides apply.
var EnvFiles = []string{".env"}

// Config holds high-level settings required across the application.
type Config struct {
	X             XConfig            `yaml:"x"`
	Oracle        OracleConfig       `yaml:"oracle"`
	Run           RunConfig          `yaml:"run"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Notifications NotificationConfig `yaml:"notifications"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// XConfig carries the platform endpoint and both credential tiers.
type XConfig struct {
	APIBaseURL string        `yaml:"apiBaseUrl"`
	Username   string        `yaml:"username"`
	Timeout    time.Duration `yaml:"timeout"`

	BearerToken       string `yaml:"-"`
	ConsumerKey       string `yaml:"-"`
	ConsumerSecret    string `yaml:"-"`
	AccessToken       string `yaml:"-"`
	AccessTokenSecret string `yaml:"-"`
}

// MissingUserCredentials lists the env variables of the user-delegated set that are empty.
func (x XConfig) MissingUserCredentials() []string {
	var missing []string
	for _, kv := range []struct{ name, value string }{
		{consumerKeyEnv, x.ConsumerKey},
		{consumerSecretEnv, x.ConsumerSecret},
		{accessTokenEnv, x.AccessToken},
		{accessTokenSecretEnv, x.AccessTokenSecret},
	} {
		if strings.TrimSpace(kv.value) == "" {
			missing = append(missing, kv.name)
		}
	}
	return missing
}

// HasUserCredentials reports whether all four OAuth 1.0a secrets are present.
func (x XConfig) HasUserCredentials() bool {
	return len(x.MissingUserCredentials()) == 0
}

// HasAppCredentials reports whether the app-level bearer token is present.
func (x XConfig) HasAppCredentials() bool {
	return strings.TrimSpace(x.BearerToken) != ""
}

// OracleConfig addresses the local Ollama service.
type OracleConfig struct {
	Host     string        `yaml:"host"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	Fallback *bool         `yaml:"fallback"`
}

// FallbackEnabled reports whether the OpenAI-compatible endpoint backs up the native one.
func (o OracleConfig) FallbackEnabled() bool {
	return o.Fallback == nil || *o.Fallback
}

// RunConfig holds per-run defaults that flags may override.
type RunConfig struct {
	Max      int      `yaml:"max"`
	Keywords []string `yaml:"keywords"`
}

// ArchiveConfig enables the optional deleted-posts archive.
type ArchiveConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether an archive should be opened.
func (a ArchiveConfig) Enabled() bool {
	return a.Driver != "" && a.DSN != ""
}

// MetricsConfig points at a node_exporter textfile collector file.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ScheduleConfig defines when watch mode runs.
type ScheduleConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present), .env files and environment overrides.
// An explicit path wins over TWEET_CLEANER_CONFIG.
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

	loadEnvFiles()
	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func loadEnvFiles() {
	for _, file := range EnvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("config: cannot load %s: %v", file, err)
		}
	}
}

func (c *Config) applyEnvOverrides() {
	c.X.BearerToken = os.Getenv(bearerTokenEnv)
	c.X.ConsumerKey = os.Getenv(consumerKeyEnv)
	c.X.ConsumerSecret = os.Getenv(consumerSecretEnv)
	c.X.AccessToken = os.Getenv(accessTokenEnv)
	c.X.AccessTokenSecret = os.Getenv(accessTokenSecretEnv)

	if v := os.Getenv(usernameEnv); v != "" {
		c.X.Username = strings.TrimPrefix(v, "@")
	}

	if v := os.Getenv(ollamaHostEnv); v != "" {
		c.Oracle.Host = normalizeHost(v)
	}
	if v := os.Getenv(ollamaModelEnv); v != "" {
		c.Oracle.Model = v
	}

	if v := os.Getenv(archiveDriverEnv); v != "" {
		c.Archive.Driver = v
	}
	if v := os.Getenv(archiveDSNEnv); v != "" {
		c.Archive.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Schedule.location = loc
}

// normalizeHost accepts OLLAMA_HOST in the "host:port" form the ollama CLI uses.
func normalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host
}

func mergeConfig(base, override Config) Config {
	if override.X.APIBaseURL != "" {
		base.X.APIBaseURL = override.X.APIBaseURL
	}
	if override.X.Username != "" {
		base.X.Username = strings.TrimPrefix(override.X.Username, "@")
	}
	if override.X.Timeout > 0 {
		base.X.Timeout = override.X.Timeout
	}

	if override.Oracle.Host != "" {
		base.Oracle.Host = normalizeHost(override.Oracle.Host)
	}
	if override.Oracle.Model != "" {
		base.Oracle.Model = override.Oracle.Model
	}
	if override.Oracle.Timeout > 0 {
		base.Oracle.Timeout = override.Oracle.Timeout
	}
	if override.Oracle.Fallback != nil {
		base.Oracle.Fallback = override.Oracle.Fallback
	}

	if override.Run.Max > 0 {
		base.Run.Max = override.Run.Max
	}
	if len(override.Run.Keywords) > 0 {
		base.Run.Keywords = override.Run.Keywords
	}

	if override.Archive.Driver != "" {
		base.Archive = override.Archive
	}

	if override.Metrics.Textfile != "" {
		base.Metrics.Textfile = override.Metrics.Textfile
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Schedule.CronExpression != "" {
		base.Schedule.CronExpression = override.Schedule.CronExpression
	}
	if override.Schedule.Timezone != "" {
		base.Schedule.Timezone = override.Schedule.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		X: XConfig{
			APIBaseURL: "https://api.x.com",
			Timeout:    15 * time.Second,
		},
		Oracle: OracleConfig{
			Host:    "http://localhost:11434",
			Model:   "llama3.2:latest",
			Timeout: 60 * time.Second,
		},
		Run:      RunConfig{Max: 100},
		Schedule: ScheduleConfig{CronExpression: "0 3 * * *", Timezone: defaultTimezone, location: tz},
		Logging:  LoggingConfig{Level: "info"},
	}
}
