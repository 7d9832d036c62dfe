package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/northfleet/assetsync/internal/batch"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files and the optional ~/.assetsync.yaml config file, in
// that order of precedence.
type Config struct {
	// Global flags
	Debug  bool
	Output string

	// Registry connection
	BaseURL     string
	WorkspaceID string
	Username    string
	APIToken    string

	// Batch behavior
	Workers int

	// Device-type attribute schema override
	SchemaFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources. Flags are applied later
// by cobra through UpdateFromFlags.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindRegistryKeys()

	// Search for an optional config file in standard locations.
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".assetsync")
	}
	_ = viper.ReadInConfig()

	config := &Config{
		BaseURL:     viper.GetString("JIRA_URL"),
		WorkspaceID: viper.GetString("JIRA_WORKSPACE_ID"),
		Username:    viper.GetString("JIRA_USER"),
		APIToken:    viper.GetString("JIRA_API_TOKEN"),
		Workers:     viper.GetInt("WORKERS"),
		SchemaFile:  viper.GetString("SCHEMA_FILE"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if config.Workers <= 0 {
		config.Workers = batch.DefaultWorkers
	}

	return config, nil
}

// UpdateFromFlags applies parsed command flags, which take precedence over
// every other source.
func (c *Config) UpdateFromFlags(debug bool, output, schemaFile string, workers int) {
	c.Debug = debug
	if output != "" {
		c.Output = output
	}
	if schemaFile != "" {
		c.SchemaFile = schemaFile
	}
	if workers > 0 {
		c.Workers = workers
	}
}

// loadEnvFiles loads environment variables from .env files. .env.local
// overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindRegistryKeys explicitly binds the registry credential environment
// variables so .env values reach viper.
func bindRegistryKeys() {
	keys := []string{
		"JIRA_URL",
		"JIRA_WORKSPACE_ID",
		"JIRA_USER",
		"JIRA_API_TOKEN",
		"WORKERS",
		"SCHEMA_FILE",
	}
	for _, key := range keys {
		_ = viper.BindEnv(key)
	}
}

// getEnvOrDefault returns the environment variable value or the default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
