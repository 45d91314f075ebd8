package catalog

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/supabase"
)

// SourceConfig selects and configures a Source.
type SourceConfig struct {
	Type    SourceType
	URL     string
	Timeout time.Duration

	SupabaseURL      string
	SupabaseKey      string
	SupabaseTable    string
	SupabaseCacheTTL time.Duration
}

// NewSource creates the configured Source.
func NewSource(cfg SourceConfig, log zerolog.Logger) (Source, error) {
	switch cfg.Type {
	case SourceTypeStatic, "":
		return NewStaticSource(Fixtures()...), nil

	case SourceTypeHTTP:
		return NewHTTPSource(HTTPSourceConfig{URL: cfg.URL, Timeout: cfg.Timeout}, log)

	case SourceTypeSupabase:
		client, err := supabase.New(supabase.Config{
			URL:      cfg.SupabaseURL,
			APIKey:   cfg.SupabaseKey,
			Table:    cfg.SupabaseTable,
			CacheTTL: cfg.SupabaseCacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shophub.ErrInvalidConfig, err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("catalog source %q: %w", cfg.Type, shophub.ErrInvalidStoreType)
	}
}

// Compile-time checks that every source implements Source.
var (
	_ Source = (*StaticSource)(nil)
	_ Source = (*HTTPSource)(nil)
	_ Source = (*Cache)(nil)
	_ Source = (*supabase.Client)(nil)
)
