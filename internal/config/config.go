// Package config provides configuration loading and validation for the
// lead-search service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the service configuration, read from the environment.
// Missing optional values use defaults; features without their settings are
// disabled rather than failing startup.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Drive document source. Either a credentials file path or inline JSON
	// key material; the folder ID is the default folder to sync from.
	DriveCredentialsFile string
	DriveCredentialsJSON string
	DriveFolderID        string

	// DatabaseURL, when set, backs the job registry with PostgreSQL instead
	// of process memory.
	DatabaseURL string

	// Port is the HTTP listen port.
	Port int

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Load reads configuration from environment variables.
func Load() *Config {
	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	return &Config{
		APIKey:               os.Getenv("GEMINI_API_KEY"),
		DriveCredentialsFile: os.Getenv("GOOGLE_DRIVE_CREDENTIALS_FILE"),
		DriveCredentialsJSON: os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		DriveFolderID:        os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Port:                 port,
		LogLevel:             getenvDefault("LOG_LEVEL", "info"),
		LogFormat:            getenvDefault("LOG_FORMAT", "text"),
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: invalid port %d", c.Port)
	}

	// Validate file paths exist (if specified)
	if c.DriveCredentialsFile != "" {
		if _, err := os.Stat(c.DriveCredentialsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: Drive credentials file not found: %s", c.DriveCredentialsFile)
		}
	}

	return nil
}

// HasDrive reports whether the Drive document source is configured.
func (c *Config) HasDrive() bool {
	return (c.DriveCredentialsFile != "" || c.DriveCredentialsJSON != "") && c.DriveFolderID != ""
}

// DriveCredentials returns the service account key material, preferring the
// inline JSON over the file path.
func (c *Config) DriveCredentials() ([]byte, error) {
	if c.DriveCredentialsJSON != "" {
		return []byte(c.DriveCredentialsJSON), nil
	}
	if c.DriveCredentialsFile == "" {
		return nil, fmt.Errorf("no Drive credentials configured")
	}
	data, err := os.ReadFile(c.DriveCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read Drive credentials file: %w", err)
	}
	return data, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
