// Package catalog wraps the music catalog Web API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Sonicbar/logger"
	"Sonicbar/model"
)

// TokenLoader supplies the current access token.
type TokenLoader interface {
	Load(ctx context.Context) (*model.TokenSet, error)
}

// Refresher renews the access token after a 401.
type Refresher interface {
	Refresh(ctx context.Context) (*model.TokenSet, error)
}

// Client 曲库 Web API 客户端
type Client struct {
	baseURL    string
	market     string
	httpClient *http.Client
	tokens     TokenLoader
	refresher  Refresher
}

// NewClient 创建新的API客户端. refresher may be nil, in which case a 401 is
// returned as is.
func NewClient(baseURL string, tokens TokenLoader, refresher Refresher) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		market:  "US",
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		tokens:    tokens,
		refresher: refresher,
	}
}

// SetTimeout 设置请求超时时间，非正数保持默认
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// SetMarket sets the default market for top-track lookups.
func (c *Client) SetMarket(market string) {
	if market != "" {
		c.market = market
	}
}

func (c *Client) accessToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	ts, err := c.tokens.Load(ctx)
	if err != nil || ts == nil {
		return ""
	}
	return ts.AccessToken
}

// do sends one request. A 401 triggers exactly one refresh and replay; if
// the refresh fails the session is over and an AuthExpiredError is returned.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("编码请求失败: %w", err)
		}
	}

	token := c.accessToken(ctx)
	resp, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.refresher != nil {
		resp.Body.Close()
		logger.Info("[Catalog] 访问令牌失效，尝试刷新", logger.String("path", path))
		ts, rerr := c.refresher.Refresh(ctx)
		if rerr != nil {
			logger.Warn("[Catalog] 刷新失败，需要重新登录", logger.ErrorField(rerr))
			return &AuthExpiredError{Err: rerr}
		}
		resp, err = c.send(ctx, method, path, query, payload, ts.AccessToken)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		logger.Warn("[Catalog] API返回错误",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	return resp, nil
}

// errorMessage pulls the message out of {"error":{"status":..,"message":..}}
// or the OAuth style {"error":"..","error_description":".."}.
func errorMessage(data []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(data, &flat) == nil {
		if flat.Description != "" {
			return flat.Description
		}
		return flat.Error
	}
	return strings.TrimSpace(string(data))
}
