package config

import (
	"encoding/json"
	"os"

	"github.com/gongmax/lexitrail/pkg/logger"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Auth     AuthConfig     `json:"auth"`
	Logging  LoggingConfig  `json:"logging"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
}

type ServerConfig struct {
	Address        string   `json:"address"`
	AllowedOrigins []string `json:"allowed_origins"`
	RateLimit      float64  `json:"rate_limit"`
	RateBurst      int      `json:"rate_burst"`
}

type AuthConfig struct {
	// Audience is the OAuth client ID expected in the token's aud claim.
	Audience string `json:"audience"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

var AppConfig Config

// LoadConfig reads the JSON config file and applies environment overrides.
// A .env file next to the working directory is loaded first when present,
// so secrets like DB_ROOT_PASSWORD never have to live in the config file.
func LoadConfig(filename string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	applyEnvOverrides(&AppConfig)
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if password, ok := os.LookupEnv("DB_ROOT_PASSWORD"); ok {
		cfg.Database.Password = password
	}
	if audience, ok := os.LookupEnv("GOOGLE_CLIENT_ID"); ok {
		cfg.Auth.Audience = audience
	}
}
