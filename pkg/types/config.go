// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PlaceholderIdentification is the tool and email value a client carries
// until Connect is called. The HTTP layer refuses to send it.
const PlaceholderIdentification = "PLACEHOLDER"

// Settings identifies the client to NCBI on every request. E-utilities
// asks callers to send a tool name and a contact email.
type Settings struct {
	// Tool is the registered application name sent as the "tool" parameter.
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool" validate:"required"`

	// Email is the contact address sent as the "email" parameter.
	Email string `json:"email" yaml:"email" mapstructure:"email" validate:"required,email"`
}

// DefaultSettings returns the placeholder identification.
func DefaultSettings() Settings {
	return Settings{Tool: PlaceholderIdentification, Email: PlaceholderIdentification}
}

// IsPlaceholder reports whether either field still holds the placeholder.
func (s Settings) IsPlaceholder() bool {
	return s.Tool == PlaceholderIdentification || s.Email == PlaceholderIdentification
}

// HTTPConfig holds shared HTTP settings used for E-utilities requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litter-getter/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds the HTTP 429 backoff loop (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// PubMedConfig holds settings for the E-utilities client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root, without a trailing slash.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Tool and Email seed the client's identification. Empty values fall
	// back to the ncbi-tool and ncbi-email secrets; when both stay empty
	// the client keeps PlaceholderIdentification and refuses requests.
	Tool  string `json:"tool" yaml:"tool" mapstructure:"tool"`
	Email string `json:"email" yaml:"email" mapstructure:"email"`

	// SearchPageSize is the esearch retmax (default 5000).
	SearchPageSize int `json:"search_page_size" yaml:"search_page_size" mapstructure:"search_page_size"`

	// FetchPageSize is the number of ids per efetch call (default 1000).
	FetchPageSize int `json:"fetch_page_size" yaml:"fetch_page_size" mapstructure:"fetch_page_size"`
}

// StoreConfig holds settings for the local snapshot database.
type StoreConfig struct {
	// Path is the SQLite database file (default "litter-getter.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls the Prometheus textfile written at exit.
type MetricsConfig struct {
	// Textfile is the output path; empty disables metrics output.
	Textfile string `json:"textfile" yaml:"textfile" mapstructure:"textfile"`
}

// Config groups every section of litter-getter.yaml.
type Config struct {
	PubMed  PubMedConfig  `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}
