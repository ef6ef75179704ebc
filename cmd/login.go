package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Sonicbar/core/tokens"
	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var loginTimeout time.Duration

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "登录在线曲库",
	Long: `打开授权页面并在本地回调地址等待授权码，换取的令牌写入令牌存储。
回调地址取自 CATALOG_REDIRECT_URI，例如 http://localhost:8888/callback。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CatalogClientID == "" {
			return fmt.Errorf("在线曲库未配置 (CATALOG_CLIENT_ID)")
		}
		a, cleanup, err := openAuth()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
		defer cancel()

		ts, err := waitForCallback(ctx, a, cfg.CatalogRedirectURI)
		if err != nil {
			return err
		}
		fmt.Printf("登录成功，令牌有效期至 %s\n", ts.Expiry.Local().Format(time.DateTime))
		return nil
	},
}

// waitForCallback serves the redirect URI until the provider calls back
// with a code, then exchanges it.
func waitForCallback(ctx context.Context, a *tokens.Authenticator, redirectURI string) (*model.TokenSet, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("回调地址无效，应为 http://hostname:port/path: %q", redirectURI)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	state := uuid.NewString()
	type result struct {
		ts  *model.TokenSet
		err error
	}
	done := make(chan result, 1)
	finish := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "authorization denied: "+e, http.StatusBadRequest)
			finish(result{err: fmt.Errorf("授权被拒绝: %s", e)})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "code not found", http.StatusBadRequest)
			return
		}

		ts, err := a.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("token exchange error: %v", err), http.StatusInternalServerError)
			finish(result{err: err})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<h1>登录成功</h1><p>可以关闭这个窗口了。</p>")
		finish(result{ts: ts})
	})

	server := &http.Server{Addr: u.Host, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Debug("[Login] 等待回调", logger.String("addr", u.Host), logger.String("path", path))
	fmt.Printf("在浏览器中打开以下地址完成授权:\n\n  %s\n\n", a.AuthCodeURL(state))

	select {
	case r := <-done:
		return r.ts, r.err
	case err := <-serveErr:
		return nil, fmt.Errorf("无法监听回调地址: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("等待授权超时: %w", ctx.Err())
	}
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "清除保存的在线曲库令牌",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openAuth()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := a.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("已退出登录")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "显示当前在线曲库账号",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openAuth()
		if err != nil {
			return err
		}
		defer cleanup()

		ts, err := a.Store().Load(cmd.Context())
		if errors.Is(err, tokens.ErrNoTokens) {
			fmt.Println("未登录")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("令牌类型: %s\n过期时间: %s\n", ts.TokenType, ts.Expiry.Local().Format(time.DateTime))
		if ts.Scope != "" {
			fmt.Printf("权限: %s\n", ts.Scope)
		}

		// 只有 JWT 形式的令牌才有可读的声明
		claims, err := tokens.DecodeClaims(ts.AccessToken)
		switch {
		case errors.Is(err, tokens.ErrNotJWT):
		case err != nil:
			return err
		default:
			fmt.Printf("主体: %s\n签发者: %s\n", claims.Subject, claims.Issuer)
		}

		client := newCatalogClient(a)
		if client == nil {
			return nil
		}
		user, err := client.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("账号: %s (%s)\n", user.DisplayName, user.ID)
		if user.Product != "" {
			fmt.Printf("订阅: %s\n", user.Product)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "等待授权的最长时间")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
