package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"Sonicbar/core/catalog"
	"Sonicbar/core/library"
	"Sonicbar/core/player"
	"Sonicbar/core/utils"
	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("[Server] 写入响应失败", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var apiErr *catalog.APIError
	switch {
	case errors.Is(err, player.ErrQueueEmpty), errors.Is(err, player.ErrNoSession),
		errors.Is(err, library.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, player.ErrIndexOutOfRange), errors.Is(err, library.ErrUnknownCategory),
		errors.Is(err, catalog.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrNothingToPlay):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrAuthExpired):
		// 需要重新登录在线曲库，和控制端令牌无关
		return http.StatusForbidden
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, player.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("[Server] 请求失败", logger.String("path", r.URL.Path), logger.ErrorField(err))
	} else {
		logger.Debug("[Server] 请求被拒绝", logger.String("path", r.URL.Path), logger.Int("status", status), logger.ErrorField(err))
	}
	writeError(w, status, err.Error())
}

// decodeBody reads an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// HealthHandler 健康检查
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPlayerHandler 返回当前播放状态
func (h *APIHandler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	h.Player.SyncPosition()
	writeJSON(w, http.StatusOK, h.Player.Snapshot())
}

// PlayerCommand is the optional body of POST /api/player/{command}.
type PlayerCommand struct {
	Index      *int          `json:"index,omitempty"`
	Position   *float64      `json:"position,omitempty"` // 秒
	Volume     *float64      `json:"volume,omitempty"`   // 0-1
	Track      *model.Track  `json:"track,omitempty"`
	Tracks     []model.Track `json:"tracks,omitempty"`
	StartIndex int           `json:"startIndex,omitempty"`
}

// PlayerCommandHandler 执行播放器命令并返回新的状态
func (h *APIHandler) PlayerCommandHandler(w http.ResponseWriter, r *http.Request) {
	command := mux.Vars(r)["command"]

	var body PlayerCommand
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	p := h.Player
	switch strings.ToLower(command) {
	case "play":
		err = p.Play()
	case "pause":
		err = p.Pause()
	case "toggle", "playpause":
		err = p.PlayPause()
	case "next":
		err = p.Next()
	case "prev":
		err = p.Prev()
	case "seek":
		if body.Position == nil {
			writeError(w, http.StatusBadRequest, "position is required")
			return
		}
		err = p.Seek(utils.SecondsToDuration(*body.Position))
	case "volume":
		if body.Volume == nil {
			writeError(w, http.StatusBadRequest, "volume is required")
			return
		}
		p.SetVolume(*body.Volume)
	case "mute":
		err = p.ToggleMute()
	case "repeat":
		p.ToggleRepeat()
	case "shuffle":
		p.ToggleShuffle()
	case "minimize":
		p.ToggleMinimized()
	case "sidebar":
		p.ToggleSidebar()
	case "add":
		if body.Track == nil {
			writeError(w, http.StatusBadRequest, "track is required")
			return
		}
		p.AddToQueue(*body.Track)
	case "playat":
		if body.Index == nil {
			writeError(w, http.StatusBadRequest, "index is required")
			return
		}
		err = p.PlayAt(*body.Index)
	case "queue":
		err = p.SetQueue(body.Tracks, body.StartIndex)
	case "cleanup", "stop":
		p.Cleanup()
	default:
		writeError(w, http.StatusNotFound, "unknown command: "+command)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	logger.Debug("[Server] 播放器命令", logger.String("command", command), logger.String("user", GetUsernameFromContext(r.Context())))
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// LibrarySearchHandler 搜索本地曲库
func (h *APIHandler) LibrarySearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category, err := library.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	results, err := h.Searcher.Search(r.Context(), query, category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// LibraryPlayRequest picks what to play: one song, a list of songs
// ("play all"), or a playlist.
type LibraryPlayRequest struct {
	SongID     string   `json:"songId,omitempty"`
	SongIDs    []string `json:"songIds,omitempty"`
	PlaylistID string   `json:"playlistId,omitempty"`
	StartIndex int      `json:"startIndex,omitempty"`
}

// LibraryPlayHandler 播放本地曲库内容
func (h *APIHandler) LibraryPlayHandler(w http.ResponseWriter, r *http.Request) {
	var req LibraryPlayRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var tracks []model.Track
	switch {
	case req.SongID != "":
		t, err := h.Library.Track(r.Context(), req.SongID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		tracks = []model.Track{t}
	case len(req.SongIDs) > 0:
		for _, id := range req.SongIDs {
			t, err := h.Library.Track(r.Context(), id)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			tracks = append(tracks, t)
		}
	case req.PlaylistID != "":
		songs, err := h.Library.PlaylistSongs(r.Context(), req.PlaylistID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		tracks = songs
	default:
		writeError(w, http.StatusBadRequest, "songId, songIds or playlistId is required")
		return
	}

	if err := h.Player.SetQueue(tracks, req.StartIndex); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Player.Snapshot())
}

// CatalogSearchResponse carries the raw catalog result and the playable
// tracks extracted from it.
type CatalogSearchResponse struct {
	Tracks []model.Track              `json:"tracks"`
	Result *model.CatalogSearchResult `json:"result"`
}

// CatalogSearchHandler 搜索在线曲库
func (h *APIHandler) CatalogSearchHandler(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		writeError(w, http.StatusNotImplemented, "catalog not configured")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	var types []string
	if t := r.URL.Query().Get("type"); t != "" {
		types = strings.Split(t, ",")
	}

	result, err := h.Catalog.Search(r.Context(), query, types...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := CatalogSearchResponse{Tracks: []model.Track{}, Result: result}
	if result.Tracks != nil {
		resp.Tracks = catalog.PlayableTracks(result.Tracks.Items, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CatalogPlayHandler 播放在线曲库的单曲、专辑、歌单、歌手热门或收藏
func (h *APIHandler) CatalogPlayHandler(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		writeError(w, http.StatusNotImplemented, "catalog not configured")
		return
	}
	vars := mux.Vars(r)
	tracks, err := h.Catalog.Queue(r.Context(), strings.ToLower(vars["kind"]), vars["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Player.SetQueue(tracks, 0); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Player.Snapshot())
}
