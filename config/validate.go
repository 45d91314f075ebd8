package config

import (
	"fmt"
	"slices"

	"github.com/creastat/shophub"
)

// Validate rejects unknown drivers and missing connection settings.
func (c *Config) Validate() error {
	checks := []func() error{
		c.Client.validate,
		c.Server.validate,
		c.Catalog.validate,
		c.Search.validate,
		c.validateLogging,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", shophub.ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c *ClientConfig) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("client.api_base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	switch c.Storage.Driver {
	case "memory":
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("client.storage.path is required for badger")
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("client.storage.redis_url is required for redis")
		}
	default:
		return fmt.Errorf("unknown client.storage.driver %q", c.Storage.Driver)
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	rl := c.RateLimit
	if rl.Products < 0 || rl.Cart < 0 || rl.Chatbot < 0 || rl.Checkout < 0 {
		return fmt.Errorf("server.rate_limit values must not be negative")
	}
	if !rl.Disabled && rl.Window <= 0 {
		return fmt.Errorf("server.rate_limit.window must be positive")
	}
	switch c.CartStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("server.redis_url is required for the redis cart store")
		}
	default:
		return fmt.Errorf("unknown server.cart_store %q", c.CartStore)
	}
	return nil
}

func (c *CatalogConfig) validate() error {
	switch c.Source {
	case "static":
	case "http":
		if c.URL == "" {
			return fmt.Errorf("catalog.url is required for the http source")
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("catalog.supabase_url and catalog.supabase_key are required for the supabase source")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Source)
	}
	return nil
}

func (c *SearchConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Store {
	case "memory":
	case "qdrant":
		if c.QdrantURL == "" {
			return fmt.Errorf("search.qdrant_url is required for the qdrant store")
		}
	default:
		return fmt.Errorf("unknown search.store %q", c.Store)
	}
	switch c.Embedder {
	case "hash":
	case "genai":
		if c.GenAIAPIKey == "" {
			return fmt.Errorf("search.genai_api_key is required for the genai embedder")
		}
	default:
		return fmt.Errorf("unknown search.embedder %q", c.Embedder)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("search.dimensions must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", ""}, c.Logging.Level) {
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	if !slices.Contains([]string{"json", "console", ""}, c.Logging.Format) {
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	return nil
}
