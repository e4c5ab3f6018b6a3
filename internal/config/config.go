package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Modes the client can run in.
const (
	ModeDemo   = "demo"
	ModeRemote = "remote"
)

// Config holds user preferences
type Config struct {
	Mode       string `yaml:"mode" json:"mode"`                 // "demo" or "remote"
	ServerURL  string `yaml:"server_url" json:"server_url"`     // Task server base URL (remote mode)
	DemoDBPath string `yaml:"demo_db_path" json:"demo_db_path"` // Demo store location (demo mode)

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`
	LogFile    string `yaml:"log_file" json:"log_file"`
	LogConsole bool   `yaml:"log_console" json:"log_console"`
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	demoPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".onejob", "logs", "onejob.log")
		demoPath = filepath.Join(home, ".onejob", "demo.db")
	}

	return &Config{
		Mode:       getEnv("ONEJOB_MODE", ModeDemo),
		ServerURL:  getEnv("ONEJOB_SERVER_URL", "http://127.0.0.1:8000"),
		DemoDBPath: getEnv("ONEJOB_DEMO_DB", demoPath),
		LogLevel:   getEnv("ONEJOB_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("ONEJOB_LOG_FILE", logPath),
		LogConsole: getEnv("ONEJOB_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".onejob", "config.yaml"), nil
}

// Load loads config from ~/.onejob/config.yaml
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.onejob/config.yaml
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
