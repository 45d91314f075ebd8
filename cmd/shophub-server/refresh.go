package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/creastat/shophub/catalog"
	"github.com/creastat/shophub/config"
	"github.com/creastat/shophub/logging"
)

var refreshCatalogCmd = &cobra.Command{
	Use:   "refresh-catalog",
	Short: "Reload the product catalog into the redis cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logging.Init(cfg.Logging)
		log := logging.With("main")
		ctx := cmd.Context()

		rdb, err := openRedis(ctx, cfg.Server.RedisURL)
		if err != nil {
			return err
		}
		if rdb == nil {
			return errors.New("refresh-catalog needs server.redis_url")
		}
		defer rdb.Close()

		src, err := openSource(cfg.Catalog)
		if err != nil {
			return err
		}
		if c, ok := src.(io.Closer); ok {
			defer c.Close()
		}

		cache := catalog.NewCache(src, rdb, cfg.Catalog.CacheTTL, logging.With("catalog"))
		if err := cache.Invalidate(ctx); err != nil {
			return err
		}
		products, err := cache.Refresh(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("count", len(products)).Dur("ttl", cache.TTL(ctx)).Msg("catalog refreshed")
		return nil
	},
}
