package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database            DatabaseConfig   `json:"database"`
	JWTSecret           string           `json:"jwt_secret"`
	Port                int              `json:"port"`
	JWTTTLHours         int              `json:"jwt_ttl_hours"`
	SessionIdleMinutes  int              `json:"session_idle_minutes"`
	ResetCodeTTLMinutes int              `json:"reset_code_ttl_minutes"`
	ForgotCooldownSecs  int              `json:"forgot_cooldown_seconds"`
	ChatRetentionDays   int              `json:"chat_retention_days"`
	CORSAllowlist       []string         `json:"cors_allowlist"`
	Mail                MailConfig       `json:"mail"`
	AI                  AIConfig         `json:"ai"`
	FileStore           FileStoreConfig  `json:"file_store"`
	LogConfig           logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type AIConfig struct {
	Provider       string                 `json:"provider"`
	Model          string                 `json:"model"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
	Options        AIOptions              `json:"options"`
	Data           map[string]interface{} `json:"data"`
}

type AIOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
	MaxTokens   int     `json:"max_tokens"`
}

type FileStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.SessionIdleMinutes == 0 {
		cfg.SessionIdleMinutes = 30
	}
	if cfg.ResetCodeTTLMinutes == 0 {
		cfg.ResetCodeTTLMinutes = 10
	}
	if cfg.ForgotCooldownSecs == 0 {
		cfg.ForgotCooldownSecs = 60
	}
	if cfg.ChatRetentionDays == 0 {
		cfg.ChatRetentionDays = 365
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "ollama"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "llama3.2"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 120
	}
	if cfg.AI.Options.Temperature == 0 {
		cfg.AI.Options.Temperature = 0.8
	}
	if cfg.AI.Options.TopP == 0 {
		cfg.AI.Options.TopP = 0.9
	}
	if cfg.AI.Options.TopK == 0 {
		cfg.AI.Options.TopK = 40
	}
	if cfg.AI.Options.MaxTokens == 0 {
		cfg.AI.Options.MaxTokens = 512
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		if cfg.FileStore.Data == nil {
			cfg.FileStore.Data = map[string]interface{}{"dir": "./data/avatars"}
		}
	}
	return &cfg, nil
}
