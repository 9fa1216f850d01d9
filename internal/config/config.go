package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig        `yaml:"app"`
	HTTP        HTTPConfig       `yaml:"http"`
	GRPC        GRPCConfig       `yaml:"grpc"`
	Logging     LoggingConfig    `yaml:"logging"`
	Redis       RedisConfig      `yaml:"redis"`
	Monitoring  MonitoringConfig `yaml:"monitoring"`
	Session     SessionConfig    `yaml:"session"`
	Firebase    FirebaseConfig   `yaml:"firebase"`
	Relay       RelayConfig      `yaml:"relay"`
	GenAI       GenAIConfig      `yaml:"genai"`
	Google      GoogleConfig     `yaml:"google"`
	Telegram    TelegramConfig   `yaml:"telegram"`
	CatalogPath string           `yaml:"catalog_path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type GRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type SessionConfig struct {
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
	TTLMinutes   int    `yaml:"ttl_minutes"`

	// InflightTTLSeconds bounds how long a stuck AI request keeps its control disabled.
	InflightTTLSeconds int `yaml:"inflight_ttl_seconds"`
}

// FirebaseConfig holds the build-time values injected into the page: the app
// namespace, identity provider settings and the optional bootstrap token.
type FirebaseConfig struct {
	AppID                  string `yaml:"app_id"`
	ProjectID              string `yaml:"project_id"`
	APIKey                 string `yaml:"api_key"`
	CredentialsFile        string `yaml:"credentials_file"`
	IdentityEndpoint       string `yaml:"identity_endpoint"`
	InitialAuthToken       string `yaml:"initial_auth_token"`
	ReservationsCollection string `yaml:"reservations_collection"`
}

type RelayConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type GenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	ReservationsSheetID   string `yaml:"reservations_spreadsheet_id"`
}

type TelegramConfig struct {
	BotToken string  `yaml:"bot_token"`
	ChatIDs  []int64 `yaml:"chat_ids"`
	Debug    bool    `yaml:"debug"`
}

const (
	DefaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"
	DefaultGenAIEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGenAIModel       = "gemini-2.5-flash-preview-05-20"
)

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Firebase.AppID) == "" {
		return errors.New("firebase app_id is required")
	}
	if c.Relay.Endpoint == "" {
		return errors.New("relay endpoint is required")
	}
	if !strings.HasPrefix(c.Relay.Endpoint, "https://") && !strings.HasPrefix(c.Relay.Endpoint, "http://") {
		return fmt.Errorf("relay endpoint must be an http(s) url: %q", c.Relay.Endpoint)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.Telegram.BotToken != "" && len(c.Telegram.ChatIDs) == 0 {
		return errors.New("telegram chat_ids are required when bot_token is set")
	}
	return nil
}

// StoreConfigured reports whether the document store can be opened.
func (c *Config) StoreConfigured() bool {
	return c.Firebase.ProjectID != ""
}

// IdentityConfigured reports whether the identity provider can be reached.
func (c *Config) IdentityConfigured() bool {
	return c.Firebase.APIKey != ""
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "privatechef"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 5
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 8081
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "chef_session"
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 24 * 60
	}
	if c.Session.InflightTTLSeconds == 0 {
		c.Session.InflightTTLSeconds = 120
	}
	if c.Firebase.IdentityEndpoint == "" {
		c.Firebase.IdentityEndpoint = DefaultIdentityEndpoint
	}
	if c.Firebase.ReservationsCollection == "" {
		c.Firebase.ReservationsCollection = "reservations"
	}
	if c.GenAI.Endpoint == "" {
		c.GenAI.Endpoint = DefaultGenAIEndpoint
	}
	if c.GenAI.Model == "" {
		c.GenAI.Model = DefaultGenAIModel
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "configs/catalog.yaml"
	}
}
