package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Sonicbar/core/tokens"
	"Sonicbar/model"

	"github.com/go-redis/redis/v8"
)

const tokenKey = "sonicbar:tokens"

// 哈希字段，沿用浏览器端存储的键名
const (
	fieldAccessToken  = "spotify_access_token"
	fieldRefreshToken = "spotify_refresh_token"
	fieldTokenExpiry  = "spotify_token_expiry" // 毫秒时间戳
	fieldTokenType    = "token_type"
	fieldScope        = "scope"
)

// RedisTokenStore 将令牌保存在 Redis 哈希中，多台机器可以共享一次登录
type RedisTokenStore struct {
	rc *redis.Client
}

// NewRedisTokenStore 使用全局客户端创建令牌存储
func NewRedisTokenStore() (*RedisTokenStore, error) {
	rc, err := client()
	if err != nil {
		return nil, err
	}
	return &RedisTokenStore{rc: rc}, nil
}

func tokenFields(ts *model.TokenSet) map[string]interface{} {
	fields := map[string]interface{}{
		fieldAccessToken:  ts.AccessToken,
		fieldRefreshToken: ts.RefreshToken,
		fieldTokenType:    ts.TokenType,
		fieldScope:        ts.Scope,
		fieldTokenExpiry:  "",
	}
	if !ts.Expiry.IsZero() {
		fields[fieldTokenExpiry] = strconv.FormatInt(ts.Expiry.UnixMilli(), 10)
	}
	return fields
}

func tokenFromFields(fields map[string]string) (*model.TokenSet, error) {
	ts := &model.TokenSet{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
		TokenType:    fields[fieldTokenType],
		Scope:        fields[fieldScope],
	}
	if ts.AccessToken == "" && ts.RefreshToken == "" {
		return nil, tokens.ErrNoTokens
	}
	if raw := fields[fieldTokenExpiry]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid token expiry %q: %w", raw, err)
		}
		ts.Expiry = time.UnixMilli(ms)
	}
	return ts, nil
}

func (s *RedisTokenStore) Load(ctx context.Context) (*model.TokenSet, error) {
	fields, err := s.rc.HGetAll(ctx, tokenKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	return tokenFromFields(fields)
}

func (s *RedisTokenStore) Save(ctx context.Context, ts *model.TokenSet) error {
	if ts == nil {
		return fmt.Errorf("nil token set")
	}
	if err := s.rc.HSet(ctx, tokenKey, tokenFields(ts)).Err(); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.rc.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

var _ tokens.Store = (*RedisTokenStore)(nil)
