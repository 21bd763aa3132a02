/**
 * Configuration for the CAPTCHA Solver Worker
 *
 * Loads configuration from environment variables matching .env.solver
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds worker configuration
type Config struct {
	// HTTP server configuration
	HTTPAddr string

	// Tesseract configuration
	TesseractLang string
	OCRModes      []string
	OCRTimeoutMs  int

	// Voting configuration
	MinCandidateLength int
	AllowedCharset     string

	// Preprocessing configuration
	CLAHETileSize   int
	CLAHEClipLimit  float64
	ThresholdWindow int
	ThresholdOffset int
	MorphKernelSize int
	ScaleFactor     int

	// Supplementary simple-threshold recognition pass
	EnableSimplePass bool

	// Request limits
	MaxImageBytes int64

	// Logging
	LogLevel string
}

// DefaultAllowedCharset is the character set kept by candidate
// normalization when ALLOWED_CHARSET is not configured.
const DefaultAllowedCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTPAddr:           getEnvOrDefault("HTTP_ADDR", "127.0.0.1:5555"),
		TesseractLang:      getEnvOrDefault("TESSERACT_LANG", "eng"),
		OCRModes:           getEnvAsListOrDefault("OCR_MODES", []string{"single_line", "single_word", "single_block"}),
		OCRTimeoutMs:       getEnvAsIntOrDefault("OCR_TIMEOUT_MS", 10000),
		MinCandidateLength: getEnvAsIntOrDefault("MIN_CANDIDATE_LENGTH", 4),
		AllowedCharset:     getEnvOrDefault("ALLOWED_CHARSET", DefaultAllowedCharset),
		CLAHETileSize:      getEnvAsIntOrDefault("CLAHE_TILE_SIZE", 8),
		CLAHEClipLimit:     getEnvAsFloatOrDefault("CLAHE_CLIP_LIMIT", 2.0),
		ThresholdWindow:    getEnvAsIntOrDefault("THRESHOLD_WINDOW", 11),
		ThresholdOffset:    getEnvAsIntOrDefault("THRESHOLD_OFFSET", 2),
		MorphKernelSize:    getEnvAsIntOrDefault("MORPH_KERNEL_SIZE", 2),
		ScaleFactor:        getEnvAsIntOrDefault("SCALE_FACTOR", 2),
		EnableSimplePass:   getEnvAsBoolOrDefault("ENABLE_SIMPLE_PASS", true),
		MaxImageBytes:      getEnvAsInt64OrDefault("MAX_IMAGE_BYTES", 10485760), // 10MB
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}

	if len(c.OCRModes) == 0 {
		return fmt.Errorf("OCR_MODES must name at least one recognition mode")
	}

	if c.OCRTimeoutMs < 100 || c.OCRTimeoutMs > 300000 {
		return fmt.Errorf("OCR_TIMEOUT_MS must be between 100 and 300000, got %d", c.OCRTimeoutMs)
	}

	if c.MinCandidateLength < 1 || c.MinCandidateLength > 64 {
		return fmt.Errorf("MIN_CANDIDATE_LENGTH must be between 1 and 64, got %d", c.MinCandidateLength)
	}

	if c.AllowedCharset == "" {
		return fmt.Errorf("ALLOWED_CHARSET must not be empty")
	}

	if c.CLAHETileSize < 1 || c.CLAHETileSize > 64 {
		return fmt.Errorf("CLAHE_TILE_SIZE must be between 1 and 64, got %d", c.CLAHETileSize)
	}

	if c.CLAHEClipLimit <= 0 || c.CLAHEClipLimit > 40 {
		return fmt.Errorf("CLAHE_CLIP_LIMIT must be between 0 and 40, got %g", c.CLAHEClipLimit)
	}

	if c.ThresholdWindow < 3 || c.ThresholdWindow%2 == 0 {
		return fmt.Errorf("THRESHOLD_WINDOW must be an odd number >= 3, got %d", c.ThresholdWindow)
	}

	if c.MorphKernelSize < 1 || c.MorphKernelSize > 9 {
		return fmt.Errorf("MORPH_KERNEL_SIZE must be between 1 and 9, got %d", c.MorphKernelSize)
	}

	if c.ScaleFactor < 1 || c.ScaleFactor > 8 {
		return fmt.Errorf("SCALE_FACTOR must be between 1 and 8, got %d", c.ScaleFactor)
	}

	if c.MaxImageBytes < 1024 || c.MaxImageBytes > 104857600 { // 1KB to 100MB
		return fmt.Errorf("MAX_IMAGE_BYTES must be between 1KB and 100MB, got %d", c.MaxImageBytes)
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBoolOrDefault gets environment variable as bool or returns default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsListOrDefault gets a comma-separated environment variable as a
// string slice or returns default
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}
