package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"Sonicbar/core/auth"
	"Sonicbar/logger"
)

type ctxKey string

const usernameKey ctxKey = "username"

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler 校验控制密码并签发令牌
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if h.passwordHash == "" {
		writeError(w, http.StatusServiceUnavailable, "control password not configured")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] 解析请求体失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	if req.Username == "" {
		req.Username = "admin"
	}

	// 验证密码
	if !auth.CheckPasswordHash(req.Password, h.passwordHash) {
		logger.Warn("[Login] 密码验证失败", logger.String("username", req.Username), logger.String("remote", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	// 生成JWT token
	token, err := h.issuer.GenerateToken(req.Username)
	if err != nil {
		logger.Error("[Login] 生成Token失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", req.Username))
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// AuthMiddleware is a middleware function that checks for a valid JWT token
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := h.issuer.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUsernameFromContext extracts the username from the request context
func GetUsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}
