package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"Sonicbar/config"
	"Sonicbar/core/auth"
	"Sonicbar/core/library"
	"Sonicbar/core/player"
	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/gorilla/mux"
)

// Searcher runs (debounced) library searches.
type Searcher interface {
	Search(ctx context.Context, query string, category library.Category) (library.Results, error)
}

// Library resolves library ids.
type Library interface {
	Track(ctx context.Context, id string) (model.Track, error)
	PlaylistSongs(ctx context.Context, id string) ([]model.Track, error)
}

// Catalog is the part of the catalog client the API exposes.
type Catalog interface {
	Search(ctx context.Context, query string, types ...string) (*model.CatalogSearchResult, error)
	Queue(ctx context.Context, kind, id string) ([]model.Track, error)
}

// QueueStore persists named queues.
type QueueStore interface {
	Save(ctx context.Context, name string, tracks []model.Track) error
	Load(ctx context.Context, name string) ([]model.Track, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Deps are the collaborators behind the API. Catalog and Queues may be nil.
type Deps struct {
	Player   *player.Player
	Searcher Searcher
	Library  Library
	Catalog  Catalog
	Queues   QueueStore
}

// APIHandler 处理所有API请求
type APIHandler struct {
	Deps
	issuer       *auth.Issuer
	passwordHash string
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(cfg *config.Config, deps Deps) (*APIHandler, error) {
	if deps.Player == nil || deps.Searcher == nil || deps.Library == nil {
		return nil, errors.New("player, searcher and library are required")
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("control server: %w", err)
	}
	return &APIHandler{Deps: deps, issuer: issuer, passwordHash: cfg.ControlPasswordHash}, nil
}

// Router builds the route table.
func (h *APIHandler) Router() *mux.Router {
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)

	// 播放器
	router.HandleFunc("/api/player", h.AuthMiddleware(h.GetPlayerHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/{command}", h.AuthMiddleware(h.PlayerCommandHandler)).Methods(http.MethodPost)

	// 本地曲库
	router.HandleFunc("/api/library/search", h.AuthMiddleware(h.LibrarySearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/library/play", h.AuthMiddleware(h.LibraryPlayHandler)).Methods(http.MethodPost)

	// 在线曲库
	router.HandleFunc("/api/catalog/search", h.AuthMiddleware(h.CatalogSearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/catalog/play/{kind}", h.AuthMiddleware(h.CatalogPlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/catalog/play/{kind}/{id}", h.AuthMiddleware(h.CatalogPlayHandler)).Methods(http.MethodPost)

	// 保存的队列
	router.HandleFunc("/api/queues", h.AuthMiddleware(h.ListQueuesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/queues/{name}", h.AuthMiddleware(h.SaveQueueHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/queues/{name}", h.AuthMiddleware(h.DeleteQueueHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/queues/{name}/play", h.AuthMiddleware(h.PlayQueueHandler)).Methods(http.MethodPost)

	// 状态推送，令牌放在查询参数里
	router.HandleFunc("/ws", h.SnapshotStreamHandler).Methods(http.MethodGet)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h *APIHandler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Server] 控制服务启动", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("[Server] 正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("[Server] 服务已停止")
	return nil
}
