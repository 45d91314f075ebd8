package main

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/creastat/shophub/assistant"
	"github.com/creastat/shophub/cart"
	"github.com/creastat/shophub/cartstore"
	"github.com/creastat/shophub/catalog"
	"github.com/creastat/shophub/config"
	"github.com/creastat/shophub/embedding"
	"github.com/creastat/shophub/logging"
	"github.com/creastat/shophub/server"
	"github.com/creastat/shophub/vectorstore"
	"github.com/creastat/shophub/vectorstore/memory"
	"github.com/creastat/shophub/vectorstore/qdrant"
)

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.With("main")

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn().Err(err).Msg("close")
			}
		}
	}()

	rdb, err := openRedis(ctx, cfg.Server.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		closers = append(closers, rdb)
	}

	carts, err := cartstore.NewStore(cartstore.StoreType(cfg.Server.CartStore),
		cartstore.WithRedisClient(rdb),
		cartstore.WithRedisTTL(cfg.Server.CartTTL),
	)
	if err != nil {
		return fmt.Errorf("cart store: %w", err)
	}
	closers = append(closers, carts)

	src, err := openSource(cfg.Catalog)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		closers = append(closers, c)
	}
	products := catalog.NewService(catalog.NewCache(src, rdb, cfg.Catalog.CacheTTL, logging.With("catalog")))

	carting := cart.NewService(carts, products, logging.With("cart"))
	deps := server.Deps{
		Catalog: products,
		Carts:   carting,
	}

	g, ctx := errgroup.WithContext(ctx)

	var searcher assistant.Searcher
	if cfg.Search.Enabled {
		index, closer, err := buildIndex(cfg.Search)
		if err != nil {
			return err
		}
		closers = append(closers, closer)
		searcher = index
		deps.Documents = index

		// Index failures leave keyword search in place; they never stop the API.
		g.Go(func() error {
			all, err := products.All(ctx)
			if err != nil {
				log.Error().Err(err).Msg("load catalog for search index")
				return nil
			}
			n, err := index.Build(ctx, all)
			if err != nil {
				log.Error().Err(err).Msg("build search index")
				return nil
			}
			if n > 0 {
				log.Info().Int("documents", n).Msg("search index built")
			}
			return nil
		})
	}

	deps.Chatbot = assistant.New(carting, products, searcher, logging.With("assistant"))

	srv := server.New(server.Config{
		Addr:              cfg.Server.Addr,
		CORSOrigins:       cfg.Server.CORSOrigins,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		ProductsRateLimit: cfg.Server.RateLimit.Products,
		CartRateLimit:     cfg.Server.RateLimit.Cart,
		ChatbotRateLimit:  cfg.Server.RateLimit.Chatbot,
		CheckoutRateLimit: cfg.Server.RateLimit.Checkout,
		RateLimitWindow:   cfg.Server.RateLimit.Window,
		RateLimitDisabled: cfg.Server.RateLimit.Disabled,
	}, deps, logging.With("server"))

	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}

// openRedis connects to url; an empty url returns a nil client.
func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

func openSource(cfg config.CatalogConfig) (catalog.Source, error) {
	src, err := catalog.NewSource(catalog.SourceConfig{
		Type:             catalog.SourceType(cfg.Source),
		URL:              cfg.URL,
		Timeout:          cfg.Timeout,
		SupabaseURL:      cfg.SupabaseURL,
		SupabaseKey:      cfg.SupabaseKey,
		SupabaseTable:    cfg.SupabaseTable,
		SupabaseCacheTTL: cfg.SupabaseCacheTTL,
	}, logging.With("catalog"))
	if err != nil {
		return nil, fmt.Errorf("catalog source: %w", err)
	}
	return src, nil
}

func buildIndex(cfg config.SearchConfig) (*assistant.Index, io.Closer, error) {
	typ, err := vectorstore.ParseType(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	var store vectorstore.VectorStore
	switch typ {
	case vectorstore.TypeQdrant:
		store, err = qdrant.New(qdrant.Config{
			URL:            cfg.QdrantURL,
			CollectionName: cfg.Collection,
			APIKey:         cfg.QdrantAPIKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect qdrant: %w", err)
		}
	default:
		store = memory.New()
	}

	embedder, err := embedding.New(embedding.Config{
		Provider:   cfg.Embedder,
		APIKey:     cfg.GenAIAPIKey,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("embedder: %w", err)
	}

	return assistant.NewIndex(store, embedder, logging.With("search")), store, nil
}
