package cmd

import (
	"context"
	"fmt"
	"strings"

	"Sonicbar/cache"
	"Sonicbar/core/audio"
	"Sonicbar/core/catalog"
	"Sonicbar/core/library"
	"Sonicbar/core/player"
	"Sonicbar/core/tokens"
	"Sonicbar/db"
	"Sonicbar/logger"
	"Sonicbar/model"
	"Sonicbar/storage"
)

// app holds everything a playing command needs.
type app struct {
	player   *player.Player
	library  *library.Library
	searcher *library.Searcher
	store    tokens.Store
	auth     *tokens.Authenticator

	// 文件令牌的内存副本，由 watchTokens 刷新
	watched *tokens.FileStore
	cached  *tokens.CachedStore

	// 未配置时为 nil
	catalog *catalog.Client
	objects *storage.ObjectStore

	hasQueues  bool
	redisOpen  bool
	cancelWork context.CancelFunc
}

func connectRedis() (bool, error) {
	if !cfg.NeedsRedis() {
		return false, nil
	}
	if err := cache.ConnectRedis(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// openTokenStore picks the token store named by TOKEN_STORE.
func openTokenStore() (tokens.Store, error) {
	switch strings.ToLower(cfg.TokenStore) {
	case "redis":
		return cache.NewRedisTokenStore()
	case "file", "":
		return tokens.NewFileStore(cfg.TokenFile), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

func newAuthenticator(store tokens.Store) *tokens.Authenticator {
	return tokens.NewAuthenticator(
		cfg.CatalogClientID,
		cfg.CatalogClientSecret,
		cfg.CatalogRedirectURI,
		cfg.CatalogAuthURL,
		cfg.CatalogTokenURL,
		store,
	)
}

func newCatalogClient(auth *tokens.Authenticator) *catalog.Client {
	if cfg.CatalogClientID == "" {
		return nil
	}
	c := catalog.NewClient(cfg.CatalogAPIURL, auth.Store(), auth)
	c.SetMarket(cfg.CatalogMarket)
	c.SetTimeout(cfg.CatalogTimeout)
	return c
}

// openAuth opens the token store (connecting Redis when it lives there)
// for commands that only talk to the catalog.
func openAuth() (*tokens.Authenticator, func(), error) {
	redisOpen, err := connectRedis()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if redisOpen {
			cache.CloseRedis()
		}
	}
	store, err := openTokenStore()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return newAuthenticator(store), cleanup, nil
}

// newApp wires the player and its collaborators from cfg.
func newApp(ctx context.Context) (*app, error) {
	a := &app{}
	var err error

	if a.redisOpen, err = connectRedis(); err != nil {
		return nil, err
	}
	a.hasQueues = a.redisOpen && cfg.SavedQueues

	if a.store, err = openTokenStore(); err != nil {
		a.close()
		return nil, err
	}
	if fs, ok := a.store.(*tokens.FileStore); ok {
		a.watched = fs
		a.cached = tokens.NewCachedStore(fs)
		a.store = a.cached
	}
	a.auth = newAuthenticator(a.store)
	a.catalog = newCatalogClient(a.auth)

	repo, err := db.OpenLibrary(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.library = library.New(repo)
	a.searcher = library.NewSearcher(a.library, cfg.SearchDelay)

	if a.objects, err = storage.NewObjectStore(cfg); err != nil {
		a.close()
		return nil, err
	}
	var presigner audio.Presigner
	if a.objects != nil {
		presigner = a.objects
	}
	backend := audio.NewBackend(audio.NewFetcher(presigner))
	if !audio.Available {
		logger.Warn("[App] 当前构建没有音频输出，使用计时引擎")
	}
	a.player = player.New(backend,
		player.WithVolume(cfg.PlayerVolume),
		player.WithTickInterval(cfg.PlayerTick))

	workCtx, cancel := context.WithCancel(ctx)
	a.cancelWork = cancel
	if a.cached != nil {
		go a.watchTokens(workCtx)
	}

	logger.Info("[App] 初始化完成",
		logger.String("library", cfg.LibraryBackend),
		logger.String("tokenStore", cfg.TokenStore),
		logger.Bool("catalog", a.catalog != nil),
		logger.Bool("objectStore", a.objects != nil),
		logger.Bool("savedQueues", a.hasQueues))
	return a, nil
}

// watchTokens keeps the cached token set in step with the token file, so
// a login or logout in another terminal reaches the catalog client.
func (a *app) watchTokens(ctx context.Context) {
	path := a.watched.Path()
	err := a.watched.Watch(ctx, func(ts *model.TokenSet) {
		a.cached.Set(ts)
		if ts == nil {
			logger.Info("[Tokens] 令牌已被清除", logger.String("path", path))
			return
		}
		logger.Info("[Tokens] 令牌已更新", logger.String("path", path), logger.Any("expiry", ts.Expiry))
	})
	if err != nil {
		logger.Warn("[Tokens] 无法监听令牌文件", logger.ErrorField(err))
	}
}

// queueStore returns the saved-queue store and whether it is enabled.
func (a *app) queueStore() (cache.RedisQueues, bool) {
	return cache.RedisQueues{}, a.hasQueues
}

func (a *app) close() {
	if a.cancelWork != nil {
		a.cancelWork()
	}
	if a.player != nil {
		a.player.Close()
	}
	if a.redisOpen {
		if err := cache.CloseRedis(); err != nil {
			logger.Warn("[App] 关闭Redis连接失败", logger.ErrorField(err))
		}
	}
	if err := db.CloseGormDB(); err != nil {
		logger.Warn("[App] 关闭数据库连接失败", logger.ErrorField(err))
	}
}

// loadBucket lists the audio objects under prefix as a playable queue.
func (a *app) loadBucket(ctx context.Context, bucket, prefix string) ([]model.Track, error) {
	if a.objects == nil {
		return nil, audio.ErrNoObjectStore
	}
	objects, err := a.objects.ListAudio(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	tracks := make([]model.Track, 0, len(objects))
	for _, o := range objects {
		tracks = append(tracks, model.Track{
			ID:     o.Key,
			Title:  o.Title(),
			Album:  bucket,
			URL:    o.Locator(),
			Source: "object",
		})
	}
	return tracks, nil
}
