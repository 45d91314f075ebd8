package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SHOPHUB_"

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{
	"shophub.yaml",
	"shophub.yml",
}

// sliceKeys are parsed from comma-separated strings when set from the
// environment.
var sliceKeys = []string{
	"server.cors_origins",
}

// Load builds the configuration. path names a YAML file; when empty,
// CONFIG_PATH and then DefaultPaths are tried, and a missing file is fine.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envAliases maps environment names whose underscores are ambiguous, or that
// have a shorter conventional name, to config keys.
var envAliases = map[string]string{
	"api_url":    "client.api_base_url",
	"redis_url":  "server.redis_url",
	"qdrant_url": "search.qdrant_url",
	"genai_key":  "search.genai_api_key",
	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// sections are the top-level config keys.
var sections = []string{"client", "server", "catalog", "search", "logging"}

// envTransform maps SHOPHUB_SERVER_CART_STORE to server.cart_store. Only the
// section separator becomes a dot; nested groups are listed explicitly.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	if alias, ok := envAliases[key]; ok {
		return alias
	}

	for _, section := range sections {
		rest, ok := strings.CutPrefix(key, section+"_")
		if !ok {
			continue
		}
		for _, group := range []string{"storage", "rate_limit"} {
			if leaf, ok := strings.CutPrefix(rest, group+"_"); ok {
				return section + "." + group + "." + leaf
			}
		}
		return section + "." + rest
	}

	// Unknown names are ignored.
	return ""
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}
