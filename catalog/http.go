package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/metrics"
)

const breakerName = "catalog-upstream"

// HTTPSource fetches the catalog from an upstream JSON endpoint returning an
// array of products. Calls go through a circuit breaker so an unavailable
// upstream fails fast.
type HTTPSource struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]shophub.Product]
	log    zerolog.Logger
}

// HTTPSourceConfig configures an HTTPSource.
type HTTPSourceConfig struct {
	URL     string
	Timeout time.Duration // Default: 10 seconds

	// Breaker settings. Zero values use the defaults below.
	MaxRequests  uint32        // half-open probes, default 3
	Interval     time.Duration // closed-state count reset, default 1 minute
	OpenTimeout  time.Duration // open -> half-open, default 30 seconds
	MinRequests  uint32        // before tripping, default 5
	FailureRatio float64       // trip threshold, default 0.6
}

// NewHTTPSource creates an upstream source.
func NewHTTPSource(cfg HTTPSourceConfig, log zerolog.Logger) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("catalog url is required: %w", shophub.ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = 0.6
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	s := &HTTPSource{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}

	s.cb = gobreaker.NewCircuitBreaker[[]shophub.Product](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				log.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("opening catalog circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return s, nil
}

// Products implements Source.
func (s *HTTPSource) Products(ctx context.Context) ([]shophub.Product, error) {
	products, err := s.cb.Execute(func() ([]shophub.Product, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			s.log.Warn().Err(err).Msg("catalog request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		}
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return products, nil
}

// State returns the breaker state.
func (s *HTTPSource) State() gobreaker.State {
	return s.cb.State()
}

func (s *HTTPSource) fetch(ctx context.Context) ([]shophub.Product, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var products []shophub.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	s.log.Debug().
		Str("url", s.url).
		Int("count", len(products)).
		Dur("duration", time.Since(start)).
		Msg("fetched catalog")

	return products, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
