package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the web frontend.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// API holds the remote shipping API settings.
	API APIConfig `mapstructure:",squash"`

	// Redis holds the session and draft storage settings.
	Redis RedisConfig `mapstructure:",squash"`

	// Maps holds the mapping provider settings.
	Maps MapsConfig `mapstructure:",squash"`

	// Receipts bounds payment receipt uploads.
	Receipts ReceiptConfig `mapstructure:",squash"`

	// Admin tunes the administration panels.
	Admin AdminConfig `mapstructure:",squash"`

	// Proxy is the optional outbound proxy for every upstream call.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// APIConfig describes the remote shipping API.
type APIConfig struct {
	// BaseURL is fixed per deployment, e.g. https://tabghalmaca.com/api/v1.
	BaseURL string `mapstructure:"API_BASE_URL" required:"true"`
	// AssetURL is the site root that stored receipt paths are relative to.
	AssetURL string `mapstructure:"API_ASSET_URL" default:"https://tabghalmaca.com"`
	// TokenHeader is the custom header carrying the access token.
	TokenHeader string `mapstructure:"API_TOKEN_HEADER" default:"x_header_access_token"`
	// TimeoutSeconds of 0 leaves the transport defaults in place.
	TimeoutSeconds int `mapstructure:"API_TIMEOUT_SECONDS" default:"0"`
}

// Timeout returns the upstream client timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RedisConfig holds the redis connection and key lifetimes.
type RedisConfig struct {
	// URL has the form redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// SessionCookie is the name of the browser cookie holding the session id.
	SessionCookie string `mapstructure:"SESSION_COOKIE" default:"envios_sid"`
	// QuoteDraftTTLMinutes is how long an accepted quote waits for order creation.
	QuoteDraftTTLMinutes int `mapstructure:"QUOTE_DRAFT_TTL_MINUTES" default:"60"`
}

// DraftTTL returns the lifetime of quote and receipt drafts.
func (r RedisConfig) DraftTTL() time.Duration {
	return time.Duration(r.QuoteDraftTTLMinutes) * time.Minute
}

// MapsConfig holds the Google Maps web service credentials.
type MapsConfig struct {
	// APIKey is the Google Maps platform key.
	APIKey string `mapstructure:"GOOGLE_MAPS_API_KEY" required:"true"`
	// BaseURL is overridden in tests.
	BaseURL string `mapstructure:"MAPS_BASE_URL" default:"https://maps.googleapis.com"`
	// Region restricts autocomplete to one country code.
	Region string `mapstructure:"MAPS_REGION" default:"VE"`
	// Language of formatted addresses.
	Language string `mapstructure:"MAPS_LANGUAGE" default:"es"`
}

// ReceiptConfig bounds payment receipt images.
type ReceiptConfig struct {
	// MaxBytes is the upload ceiling checked before compression.
	MaxBytes int `mapstructure:"RECEIPT_MAX_BYTES" default:"10485760"`
	// MaxWidth is the pixel width receipts are scaled down to.
	MaxWidth int `mapstructure:"RECEIPT_MAX_WIDTH" default:"800"`
	// Quality is the JPEG re-encode quality (1-100).
	Quality int `mapstructure:"RECEIPT_QUALITY" default:"80"`
}

// AdminConfig tunes the administration panels.
type AdminConfig struct {
	// SearchDebounceMS delays tracking searches on the live listing.
	SearchDebounceMS int `mapstructure:"SEARCH_DEBOUNCE_MS" default:"400"`
}

// SearchDebounce returns the debounce window for tracking searches.
func (a AdminConfig) SearchDebounce() time.Duration {
	return time.Duration(a.SearchDebounceMS) * time.Millisecond
}

// ProxyConfig holds the optional outbound proxy.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOST"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged field to its env key and registers its default.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}

		if defaultValue, ok := field.Tag.Lookup("default"); ok {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && val.Field(i).IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}
