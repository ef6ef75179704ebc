package server

import (
	"errors"
	"net/http"

	"Sonicbar/cache"
	"Sonicbar/logger"

	"github.com/gorilla/mux"
)

func (h *APIHandler) queuesOrFail(w http.ResponseWriter) bool {
	if h.Queues == nil {
		writeError(w, http.StatusNotImplemented, "saved queues not configured")
		return false
	}
	return true
}

func (h *APIHandler) failQueue(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, cache.ErrQueueNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.fail(w, r, err)
}

// ListQueuesHandler 列出保存的队列
func (h *APIHandler) ListQueuesHandler(w http.ResponseWriter, r *http.Request) {
	if !h.queuesOrFail(w) {
		return
	}
	names, err := h.Queues.List(r.Context())
	if err != nil {
		h.failQueue(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"queues": names})
}

// SaveQueueHandler 把当前队列保存到指定名字
func (h *APIHandler) SaveQueueHandler(w http.ResponseWriter, r *http.Request) {
	if !h.queuesOrFail(w) {
		return
	}
	name := mux.Vars(r)["name"]
	snap := h.Player.Snapshot()
	if len(snap.Queue) == 0 {
		writeError(w, http.StatusConflict, "queue is empty")
		return
	}
	if err := h.Queues.Save(r.Context(), name, snap.Queue); err != nil {
		h.failQueue(w, r, err)
		return
	}
	logger.Info("[Queue] 保存队列", logger.String("name", name), logger.Int("tracks", len(snap.Queue)))
	writeJSON(w, http.StatusOK, map[string]interface{}{"name": name, "tracks": len(snap.Queue)})
}

// PlayQueueHandler 载入保存的队列并开始播放
func (h *APIHandler) PlayQueueHandler(w http.ResponseWriter, r *http.Request) {
	if !h.queuesOrFail(w) {
		return
	}
	tracks, err := h.Queues.Load(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.failQueue(w, r, err)
		return
	}
	if err := h.Player.SetQueue(tracks, 0); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Player.Snapshot())
}

// DeleteQueueHandler 删除保存的队列
func (h *APIHandler) DeleteQueueHandler(w http.ResponseWriter, r *http.Request) {
	if !h.queuesOrFail(w) {
		return
	}
	if err := h.Queues.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		h.failQueue(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
