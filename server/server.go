// Package server exposes the storefront REST API consumed by the client.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/creastat/shophub"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Requests per RateLimitWindow for each route group.
	ProductsRateLimit int
	CartRateLimit     int
	ChatbotRateLimit  int
	CheckoutRateLimit int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultConfig returns the development configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8000",
		CORSOrigins:       []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		ProductsRateLimit: 100,
		CartRateLimit:     50,
		ChatbotRateLimit:  30,
		CheckoutRateLimit: 5,
		RateLimitWindow:   time.Minute,
	}
}

// Catalog serves product reads.
type Catalog interface {
	All(ctx context.Context) ([]shophub.Product, error)
	ByID(ctx context.Context, id int) (*shophub.Product, error)
	ByCategory(ctx context.Context, category string) ([]shophub.Product, error)
	Search(ctx context.Context, query string) ([]shophub.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Carts serves per-session carts.
type Carts interface {
	Get(ctx context.Context, sessionID string) (*shophub.Cart, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) (*shophub.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*shophub.Cart, error)
	Remove(ctx context.Context, sessionID, productID string) (*shophub.Cart, error)
	Clear(ctx context.Context, sessionID string) (*shophub.Cart, error)
}

// Chatbot answers chat messages.
type Chatbot interface {
	Reply(ctx context.Context, sessionID, message string) (*shophub.ChatResponse, error)
}

// DocumentCounter reports the size of the search index.
type DocumentCounter interface {
	Count(ctx context.Context) (uint64, error)
}

// Deps are the services behind the API. Documents may be nil.
type Deps struct {
	Catalog   Catalog
	Carts     Carts
	Chatbot   Chatbot
	Documents DocumentCounter
}

// Server is the HTTP API.
type Server struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger
	now  func() time.Time

	router chi.Router
	http   *http.Server
}

// New builds the server and its routes.
func New(cfg Config, deps Deps, log zerolog.Logger) *Server {
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  log,
		now:  time.Now,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(prometheusMetrics)
	r.Use(s.cors())

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Use(s.rateLimit("products", s.cfg.ProductsRateLimit))
			r.Get("/", s.handleListProducts)
			r.Get("/categories", s.handleCategories)
			r.Get("/{id}", s.handleGetProduct)
			r.Get("/category/{category}", s.handleProductsByCategory)
			r.Get("/search/{query}", s.handleSearchProducts)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(s.rateLimit("cart", s.cfg.CartRateLimit))
			r.Use(s.requireSession)
			r.Get("/", s.handleGetCart)
			r.Post("/add", s.handleAddToCart)
			r.Put("/update", s.handleUpdateCart)
			r.Delete("/remove/{productID}", s.handleRemoveFromCart)
			r.Delete("/clear", s.handleClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(s.rateLimit("checkout", s.cfg.CheckoutRateLimit))
			r.Use(s.requireSession)
			r.Get("/summary", s.handleCheckoutSummary)
			r.Post("/", s.handleProcessCheckout)
			r.Post("/process", s.handleProcessCheckout)
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Use(s.rateLimit("chatbot", s.cfg.ChatbotRateLimit))
			r.Use(s.requireSession)
			r.Post("/chat", s.handleChat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.log, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.log, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("api server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info().Msg("api server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
