package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Editor   EditorConfig   `mapstructure:"editor" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the memory store backend.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a postgres connection string or a sqlite file/DSN.
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the settings needed to verify access tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1,lte=10080"`
}

// EditorConfig holds the limits applied while editing block documents.
type EditorConfig struct {
	MaxBlocks          int   `mapstructure:"max_blocks" validate:"gte=1,lte=50"`
	MaxImageBytes      int64 `mapstructure:"max_image_bytes" validate:"gt=0"`
	MaxImagesPerBlock  int   `mapstructure:"max_images_per_block" validate:"gte=1,lte=50"`
	MetadataDebounceMS int   `mapstructure:"metadata_debounce_ms" validate:"gte=0,lte=10000"`
	UploadConcurrency  int   `mapstructure:"upload_concurrency" validate:"gte=1,lte=32"`
}

// MetadataDebounce is the quiescence window for image metadata edits.
func (e EditorConfig) MetadataDebounce() time.Duration {
	return time.Duration(e.MetadataDebounceMS) * time.Millisecond
}

// DefaultEditorConfig returns the editor limits used when none are configured.
func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		MaxBlocks:          10,
		MaxImageBytes:      5 << 20,
		MaxImagesPerBlock:  10,
		MetadataDebounceMS: 500,
		UploadConcurrency:  4,
	}
}
