package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string `yaml:"addr"`
	GinMode       string `yaml:"gin_mode"`
	LogLevel      string `yaml:"log_level"`
	DBDriver      string `yaml:"db_driver"`
	DBHost        string `yaml:"db_host"`
	DBPort        string `yaml:"db_port"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBPath        string `yaml:"db_path"`
	SessionStore  string `yaml:"session_store"`
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	SessionSecret string `yaml:"session_secret"`
	UploadDir     string `yaml:"upload_dir"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	file := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		file, err = readFile(path)
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		Addr:          getEnv("ADDR", or(file.Addr, ":8080")),
		GinMode:       getEnv("GIN_MODE", or(file.GinMode, "debug")),
		LogLevel:      getEnv("LOG_LEVEL", or(file.LogLevel, "info")),
		DBDriver:      getEnv("DB_DRIVER", or(file.DBDriver, "mysql")),
		DBHost:        getEnv("DB_HOST", or(file.DBHost, "localhost")),
		DBPort:        getEnv("DB_PORT", or(file.DBPort, "3306")),
		DBUser:        getEnv("DB_USER", or(file.DBUser, "issueuser")),
		DBPassword:    getEnv("DB_PASSWORD", or(file.DBPassword, "issuepassword")),
		DBName:        getEnv("DB_NAME", or(file.DBName, "issue_tracker")),
		DBPath:        getEnv("DB_PATH", or(file.DBPath, "data/issues.db")),
		SessionStore:  getEnv("SESSION_STORE", or(file.SessionStore, "redis")),
		RedisHost:     getEnv("REDIS_HOST", or(file.RedisHost, "localhost")),
		RedisPort:     getEnv("REDIS_PORT", or(file.RedisPort, "6379")),
		SessionSecret: getEnv("SESSION_SECRET", or(file.SessionSecret, "default-secret-key-change-me")),
		UploadDir:     getEnv("UPLOAD_DIR", or(file.UploadDir, "uploads")),
		AdminEmail:    getEnv("ADMIN_EMAIL", file.AdminEmail),
		AdminPassword: getEnv("ADMIN_PASSWORD", file.AdminPassword),
	}, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
