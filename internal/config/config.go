package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath   = "config.toml"
	DefaultHTTPAddr     = ":8080"
	DefaultJWTExpiresIn = "24h"
	DefaultPGHost       = "127.0.0.1"
	DefaultPGPort       = 5432
	DefaultPGUser       = "postgres"
	DefaultPGDatabase   = "kaiun"
	DefaultPGSSLMode    = "disable"
	DefaultAdviceModel  = "gpt-4o-mini"
	DefaultMatchPolicy  = "substring"
	DefaultReportSpec   = "0 * * * *"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Admin     AdminConfig     `toml:"admin"`
	Auth      AuthConfig      `toml:"auth"`
	Line      LineConfig      `toml:"line"`
	Advice    AdviceConfig    `toml:"advice"`
	Recommend RecommendConfig `toml:"recommend"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Report    ReportConfig    `toml:"report"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// LineConfig holds the LINE Messaging API credentials. ChannelSecret signs
// webhook payloads; AccessToken authorizes outbound replies.
type LineConfig struct {
	ChannelSecret string `toml:"channel_secret" validate:"required"`
	AccessToken   string `toml:"access_token" validate:"required"`
	APIBaseURL    string `toml:"api_base_url"`
}

type AdviceConfig struct {
	APIKey         string `toml:"api_key" validate:"required"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Singleflight   bool   `toml:"singleflight"`
}

// RecommendConfig selects the product matching strategy:
// "substring" or "keyword".
type RecommendConfig struct {
	Policy string `toml:"policy" validate:"oneof=substring keyword"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// ReportConfig drives the periodic advice-cache growth report.
type ReportConfig struct {
	Enabled  bool   `toml:"enabled"`
	CronSpec string `toml:"cron_spec"`
}

// DSN returns the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "change-your-password-here",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Advice: AdviceConfig{
			Model:          DefaultAdviceModel,
			TimeoutSeconds: 30,
		},
		Recommend: RecommendConfig{
			Policy: DefaultMatchPolicy,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Report: ReportConfig{
			Enabled:  true,
			CronSpec: DefaultReportSpec,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets secrets be injected without writing them to disk.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LINE_CHANNEL_SECRET"); v != "" {
		cfg.Line.ChannelSecret = v
	}
	if v := os.Getenv("LINE_ACCESS_TOKEN"); v != "" {
		cfg.Line.AccessToken = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Advice.APIKey = v
	}
	if v := os.Getenv("KAIUN_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("KAIUN_PG_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
}

// Validate checks that required credentials and enum fields are set.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
