package server

import (
	"net/http"
	"time"

	"Sonicbar/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SnapshotStreamHandler pushes every player snapshot to the client as JSON.
// Browsers cannot set headers on a websocket handshake, so the token comes
// from ?token=.
func (h *APIHandler) SnapshotStreamHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.issuer.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		logger.Warn("[WS] 令牌无效", logger.ErrorField(err))
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[WS] websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	snaps, unsubscribe := h.Player.Subscribe()
	defer unsubscribe()
	logger.Info("[WS] 客户端已连接", logger.String("user", claims.Username), logger.String("remote", r.RemoteAddr))

	// 读循环只处理 pong 和关闭
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("[WS] unexpected close", logger.ErrorField(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// 先推送一次当前状态
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(h.Player.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-snaps:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 播放器已关闭
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "player closed"))
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			logger.Info("[WS] 客户端断开", logger.String("user", claims.Username))
			return
		}
	}
}
