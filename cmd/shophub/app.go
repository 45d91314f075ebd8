package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/creastat/shophub"
	"github.com/creastat/shophub/checkout"
	"github.com/creastat/shophub/client"
	"github.com/creastat/shophub/config"
	"github.com/creastat/shophub/kv"
	"github.com/creastat/shophub/logging"
	"github.com/creastat/shophub/session"
	"github.com/creastat/shophub/state"
)

// errNoSession is returned by commands that need a session when none exists.
var errNoSession = fmt.Errorf("%w: run \"shophub start\" first", shophub.ErrMissingSession)

// App holds the client-side object graph shared by every command.
type App struct {
	store    kv.Store
	redis    *redis.Client
	Sessions *session.Store
	API      *client.Client
	Cart     *state.CartContainer
	Chat     *state.ChatContainer
	Checkout *checkout.Flow
}

// NewApp opens local storage and builds the API client and state containers.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	storage := cfg.Client.Storage
	opts := []kv.StoreOption{
		kv.WithKeyPrefix(storage.KeyPrefix),
		kv.WithPath(storage.Path),
		kv.WithRedisTTL(storage.TTL),
	}
	if storage.Driver == string(kv.StoreTypeRedis) {
		ropts, err := redis.ParseURL(storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		a.redis = redis.NewClient(ropts)
		opts = append(opts, kv.WithRedisClient(a.redis))
	}

	store, err := kv.NewStore(kv.StoreType(storage.Driver), opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store

	a.Sessions = session.NewStore(store, logging.With("session"))
	a.API = client.New(a.Sessions,
		client.WithBaseURL(cfg.Client.APIBaseURL),
		client.WithTimeout(cfg.Client.Timeout),
		client.WithLogger(logging.With("api")),
	)
	a.Cart = state.NewCartContainer(a.API.Cart, logging.With("cart"))
	a.Chat = state.NewChatContainer(ctx, a.API.Chatbot, store, a.Cart, logging.With("chat"))
	a.Checkout = checkout.NewFlow(a.API.Checkout, a.Cart, logging.With("checkout"))
	return a, nil
}

// Require applies the session guard to route.
func (a *App) Require(ctx context.Context, route string) error {
	if _, ok := a.Sessions.Guard(ctx, route); !ok {
		return errNoSession
	}
	return nil
}

// Close cancels pending requests and releases storage.
func (a *App) Close() error {
	var errs []error
	if a.Chat != nil {
		errs = append(errs, a.Chat.Close())
	}
	if a.Cart != nil {
		errs = append(errs, a.Cart.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	*a = App{}
	return errors.Join(errs...)
}

// userError turns an API failure into the message shown to the shopper.
func userError(err error, fallback string) error {
	if errors.Is(err, shophub.ErrClosed) || errors.Is(err, context.Canceled) {
		return err
	}
	return errors.New(shophub.DisplayMessage(err, fallback))
}
