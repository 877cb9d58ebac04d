// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"os"
	"time"
)

// DefaultBaseURL is the public Twelve Data REST endpoint.
const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication; the source is disabled when empty
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Symbol           string        // Provider symbol used in place of the requested ticker (e.g., "UKX")
	Timeout          time.Duration // HTTP request timeout
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool { return c.TwelveDataAPIKey != "" }

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("TWELVE_DATA_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          base,
		Symbol:           os.Getenv("TWELVE_DATA_SYMBOL"),
		Timeout:          10 * time.Second,
	}
}
