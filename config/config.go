// Package config loads ShopHub settings for the CLI client and the API
// server. Sources are layered: built-in defaults, then an optional YAML file,
// then SHOPHUB_* environment variables.
package config

import (
	"time"

	"github.com/creastat/shophub/logging"
)

// Config is the full configuration tree.
type Config struct {
	Client  ClientConfig   `koanf:"client"`
	Server  ServerConfig   `koanf:"server"`
	Catalog CatalogConfig  `koanf:"catalog"`
	Search  SearchConfig   `koanf:"search"`
	Logging logging.Config `koanf:"logging"`
}

// ClientConfig configures the storefront client.
type ClientConfig struct {
	APIBaseURL string        `koanf:"api_base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	Storage    StorageConfig `koanf:"storage"`
}

// StorageConfig selects where the client keeps its session id and chat
// history.
type StorageConfig struct {
	Driver    string        `koanf:"driver"` // memory, badger, redis
	Path      string        `koanf:"path"`   // badger directory
	RedisURL  string        `koanf:"redis_url"`
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Addr            string          `koanf:"addr"`
	CORSOrigins     []string        `koanf:"cors_origins"`
	ReadTimeout     time.Duration   `koanf:"read_timeout"`
	WriteTimeout    time.Duration   `koanf:"write_timeout"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
	CartStore       string          `koanf:"cart_store"` // memory, redis
	CartTTL         time.Duration   `koanf:"cart_ttl"`
	RedisURL        string          `koanf:"redis_url"`
}

// RateLimitConfig is the per-group request budget per window.
type RateLimitConfig struct {
	Products int           `koanf:"products"`
	Cart     int           `koanf:"cart"`
	Chatbot  int           `koanf:"chatbot"`
	Checkout int           `koanf:"checkout"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`
}

// CatalogConfig selects the product source.
type CatalogConfig struct {
	Source           string        `koanf:"source"` // static, http, supabase
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
	SupabaseURL      string        `koanf:"supabase_url"`
	SupabaseKey      string        `koanf:"supabase_key"`
	SupabaseTable    string        `koanf:"supabase_table"`
	SupabaseCacheTTL time.Duration `koanf:"supabase_cache_ttl"`
}

// SearchConfig configures the assistant's semantic index.
type SearchConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Store        string `koanf:"store"` // memory, qdrant
	QdrantURL    string `koanf:"qdrant_url"`
	QdrantAPIKey string `koanf:"qdrant_api_key"`
	Collection   string `koanf:"collection"`
	Embedder     string `koanf:"embedder"` // hash, genai
	GenAIAPIKey  string `koanf:"genai_api_key"`
	Model        string `koanf:"model"`
	Dimensions   int    `koanf:"dimensions"`
}

// Default returns the built-in configuration: a local client talking to a
// local server with in-memory stores and the bundled catalog.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			APIBaseURL: "http://localhost:8000/api",
			Timeout:    10 * time.Second,
			Storage: StorageConfig{
				Driver:    "badger",
				Path:      ".shophub",
				KeyPrefix: "",
			},
		},
		Server: ServerConfig{
			Addr:            ":8000",
			CORSOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Products: 100,
				Cart:     50,
				Chatbot:  30,
				Checkout: 5,
				Window:   time.Minute,
			},
			CartStore: "memory",
			CartTTL:   24 * time.Hour,
		},
		Catalog: CatalogConfig{
			Source:           "static",
			URL:              "https://fakestoreapi.com/products",
			Timeout:          10 * time.Second,
			CacheTTL:         365 * 24 * time.Hour,
			SupabaseTable:    "products",
			SupabaseCacheTTL: 5 * time.Minute,
		},
		Search: SearchConfig{
			Enabled:    true,
			Store:      "memory",
			Collection: "shophub",
			Embedder:   "hash",
			Dimensions: 256,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}
