package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Sonicbar/cache"
	"Sonicbar/config"
	"Sonicbar/core/audio"
	"Sonicbar/core/auth"
	"Sonicbar/core/catalog"
	"Sonicbar/core/library"
	"Sonicbar/core/player"
	"Sonicbar/model"
	"Sonicbar/repository"

	"github.com/gorilla/websocket"
)

const testPassword = "let-me-in"

type fakeCatalog struct {
	result   *model.CatalogSearchResult
	tracks   []model.Track
	err      error
	kind, id string
}

func (f *fakeCatalog) Search(_ context.Context, _ string, _ ...string) (*model.CatalogSearchResult, error) {
	return f.result, f.err
}

func (f *fakeCatalog) Queue(_ context.Context, kind, id string) ([]model.Track, error) {
	f.kind, f.id = kind, id
	return f.tracks, f.err
}

type memQueues struct {
	saved map[string][]model.Track
}

func (m *memQueues) Save(_ context.Context, name string, tracks []model.Track) error {
	m.saved[name] = tracks
	return nil
}

func (m *memQueues) Load(_ context.Context, name string) ([]model.Track, error) {
	t, ok := m.saved[name]
	if !ok {
		return nil, cache.ErrQueueNotFound
	}
	return t, nil
}

func (m *memQueues) Delete(_ context.Context, name string) error {
	if _, ok := m.saved[name]; !ok {
		return cache.ErrQueueNotFound
	}
	delete(m.saved, name)
	return nil
}

func (m *memQueues) List(_ context.Context) ([]string, error) {
	var names []string
	for n := range m.saved {
		names = append(names, n)
	}
	return names, nil
}

var testHash = func() string {
	h, err := auth.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
}()

type testEnv struct {
	handler *APIHandler
	router  http.Handler
	player  *player.Player
	token   string
}

func newTestEnv(t *testing.T, cat Catalog, queues QueueStore) *testEnv {
	t.Helper()
	repo := repository.NewMemoryLibraryRepository()
	if err := repo.Seed(context.Background(), repository.SampleLibrary()); err != nil {
		t.Fatal(err)
	}
	lib := library.New(repo)
	p := player.New(audio.NewClockBackend(), player.WithTickInterval(time.Hour))
	t.Cleanup(p.Close)

	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, ControlPasswordHash: testHash}
	deps := Deps{Player: p, Searcher: library.NewSearcher(lib, 0), Library: lib}
	if cat != nil {
		deps.Catalog = cat
	}
	if queues != nil {
		deps.Queues = queues
	}
	h, err := NewAPIHandler(cfg, deps)
	if err != nil {
		t.Fatal(err)
	}
	token, err := h.issuer.GenerateToken("tester")
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{handler: h, router: h.Router(), player: p, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) model.PlaybackSnapshot {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var snap model.PlaybackSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestNewAPIHandlerRequiresSecret(t *testing.T) {
	p := player.New(audio.NewClockBackend())
	defer p.Close()
	lib := library.New(repository.NewMemoryLibraryRepository())
	_, err := NewAPIHandler(&config.Config{}, Deps{Player: p, Searcher: library.NewSearcher(lib, 0), Library: lib})
	if !errors.Is(err, auth.ErrNoSecret) {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	login := func(password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(LoginRequest{Password: password})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	if rec := login("wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d", rec.Code)
	}

	rec := login(testPassword)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	claims, err := env.handler.issuer.ParseToken(resp["token"])
	if err != nil || claims.Username != "admin" {
		t.Errorf("issued token invalid: %v %+v", err, claims)
	}

	env.handler.passwordHash = ""
	if rec := login(testPassword); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured: status %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for name, header := range map[string]string{
		"missing": "",
		"scheme":  "Token " + env.token,
		"garbage": "Bearer nope",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/player", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d", name, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health should not need a token, status %d", rec.Code)
	}
}

func TestPlayerCommands(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	snap := decodeSnapshot(t, env.do(t, http.MethodGet, "/api/player", nil))
	if !snap.Idle() || snap.Volume != player.DefaultVolume {
		t.Fatalf("expected idle default snapshot, got %+v", snap)
	}

	if rec := env.do(t, http.MethodPost, "/api/player/next", nil); rec.Code != http.StatusConflict {
		t.Errorf("next on empty queue: status %d", rec.Code)
	}

	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{PlaylistID: "pl1"}))
	if len(snap.Queue) != 3 || snap.CurrentSong == nil || snap.CurrentSong.ID != "s3" || !snap.Playing {
		t.Fatalf("unexpected snapshot after play: %+v", snap)
	}

	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/next", nil))
	if snap.QueueIndex != 1 {
		t.Errorf("next: index %d", snap.QueueIndex)
	}

	pos := 30.0
	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/seek", PlayerCommand{Position: &pos}))
	if snap.CurrentTime < 30 || snap.CurrentTime > 31 {
		t.Errorf("seek: currentTime %v", snap.CurrentTime)
	}

	vol := 0.25
	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/volume", PlayerCommand{Volume: &vol}))
	if snap.Volume != 0.25 {
		t.Errorf("volume: %v", snap.Volume)
	}

	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/repeat", nil))
	if snap.Repeat != model.RepeatAll {
		t.Errorf("repeat: %v", snap.Repeat)
	}

	idx := 5
	if rec := env.do(t, http.MethodPost, "/api/player/playAt", PlayerCommand{Index: &idx}); rec.Code != http.StatusBadRequest {
		t.Errorf("playAt out of range: status %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/player/seek", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("seek without position: status %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/player/dance", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown command: status %d", rec.Code)
	}

	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/cleanup", nil))
	if snap.Playing || snap.CurrentSong != nil || len(snap.Queue) != 3 {
		t.Errorf("cleanup should stop and keep the queue: %+v", snap)
	}
	if rec := env.do(t, http.MethodPost, "/api/player/pause", nil); rec.Code != http.StatusConflict {
		t.Errorf("pause without session: status %d", rec.Code)
	}
}

func TestSeekHugePositionSaturates(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	decodeSnapshot(t, env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{PlaylistID: "pl1"}))
	decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/pause", nil))

	pos := 1e12
	snap := decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/seek", PlayerCommand{Position: &pos}))
	if snap.CurrentSong == nil {
		t.Fatal("no current song")
	}
	// 溢出会变成负数，被钳到 0
	if want := float64(snap.CurrentSong.Duration); snap.CurrentTime != want {
		t.Errorf("seek 1e12: currentTime %v, want track end %v", snap.CurrentTime, want)
	}

	pos = -5
	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/player/seek", PlayerCommand{Position: &pos}))
	if snap.CurrentTime != 0 {
		t.Errorf("negative seek: currentTime %v", snap.CurrentTime)
	}
}

func TestLibraryEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodGet, "/api/library/search?q=the&category=songs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var res library.Results
	json.NewDecoder(rec.Body).Decode(&res)
	if len(res.Songs) != 2 || len(res.Artists) != 0 {
		t.Errorf("unexpected results %+v", res)
	}

	if rec := env.do(t, http.MethodGet, "/api/library/search?q=the&category=podcasts", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad category: status %d", rec.Code)
	}

	snap := decodeSnapshot(t, env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{SongID: "s2"}))
	if len(snap.Queue) != 1 || snap.CurrentSong.ID != "s2" {
		t.Errorf("play song should queue one track, got %+v", snap.Queue)
	}

	snap = decodeSnapshot(t, env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{SongIDs: []string{"s1", "s4"}, StartIndex: 1}))
	if len(snap.Queue) != 2 || snap.CurrentSong.ID != "s4" {
		t.Errorf("play all: %+v", snap)
	}

	if rec := env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{SongID: "nope"}); rec.Code != http.StatusNotFound {
		t.Errorf("missing song: status %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{PlaylistID: "pl4"}); rec.Code != http.StatusConflict {
		t.Errorf("empty playlist: status %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/library/play", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: status %d", rec.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if rec := env.do(t, http.MethodGet, "/api/catalog/search?q=weeknd", nil); rec.Code != http.StatusNotImplemented {
		t.Errorf("unconfigured: status %d", rec.Code)
	}

	fc := &fakeCatalog{
		result: &model.CatalogSearchResult{Tracks: &model.Paging[model.CatalogTrack]{Items: []model.CatalogTrack{
			{ID: "c1", Name: "Blinding Lights", DurationMs: 200040, PreviewURL: "https://p.example/c1.mp3", Artists: []model.CatalogArtist{{Name: "The Weeknd"}}},
			{ID: "c2", Name: "No Preview"},
		}}},
		tracks: []model.Track{{ID: "c1", Title: "Blinding Lights", Duration: 200, URL: "https://p.example/c1.mp3"}},
	}
	env = newTestEnv(t, fc, nil)

	rec := env.do(t, http.MethodGet, "/api/catalog/search?q=weeknd", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d", rec.Code)
	}
	var resp CatalogSearchResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Tracks) != 1 || resp.Tracks[0].Artist != "The Weeknd" || resp.Tracks[0].Source != catalog.SourceCatalog {
		t.Errorf("unexpected tracks %+v", resp.Tracks)
	}

	snap := decodeSnapshot(t, env.do(t, http.MethodPost, "/api/catalog/play/Album/al-1", nil))
	if fc.kind != "album" || fc.id != "al-1" || snap.CurrentSong == nil || snap.CurrentSong.ID != "c1" {
		t.Errorf("catalog play: kind=%q id=%q snap=%+v", fc.kind, fc.id, snap)
	}

	decodeSnapshot(t, env.do(t, http.MethodPost, "/api/catalog/play/saved", nil))
	if fc.kind != "saved" || fc.id != "" {
		t.Errorf("saved: kind=%q id=%q", fc.kind, fc.id)
	}

	fc.err = &catalog.AuthExpiredError{Err: errors.New("invalid_grant")}
	if rec := env.do(t, http.MethodGet, "/api/catalog/search?q=x", nil); rec.Code != http.StatusForbidden {
		t.Errorf("auth expired: status %d", rec.Code)
	}
	fc.err = &catalog.APIError{StatusCode: 500, Message: "boom"}
	if rec := env.do(t, http.MethodPost, "/api/catalog/play/track/x", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("api error: status %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/catalog/search?q=", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("blank query: status %d", rec.Code)
	}
}

func TestQueueEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if rec := env.do(t, http.MethodGet, "/api/queues", nil); rec.Code != http.StatusNotImplemented {
		t.Errorf("unconfigured: status %d", rec.Code)
	}

	qs := &memQueues{saved: map[string][]model.Track{}}
	env = newTestEnv(t, nil, qs)

	if rec := env.do(t, http.MethodPost, "/api/queues/road", nil); rec.Code != http.StatusConflict {
		t.Errorf("saving empty queue: status %d", rec.Code)
	}
	decodeSnapshot(t, env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{PlaylistID: "pl5"}))
	if rec := env.do(t, http.MethodPost, "/api/queues/road", nil); rec.Code != http.StatusOK {
		t.Fatalf("save: status %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/queues", nil)
	if !strings.Contains(rec.Body.String(), "road") {
		t.Errorf("list: %s", rec.Body.String())
	}

	decodeSnapshot(t, env.do(t, http.MethodPost, "/api/library/play", LibraryPlayRequest{SongID: "s1"}))
	snap := decodeSnapshot(t, env.do(t, http.MethodPost, "/api/queues/road/play", nil))
	if len(snap.Queue) != 5 {
		t.Errorf("play saved queue: %d tracks", len(snap.Queue))
	}

	if rec := env.do(t, http.MethodDelete, "/api/queues/road", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/queues/road/play", nil); rec.Code != http.StatusNotFound {
		t.Errorf("play deleted: status %d", rec.Code)
	}
}

func TestSnapshotStream(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bad", nil); err == nil {
		t.Fatal("expected handshake to fail with a bad token")
	} else if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+env.token, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap model.PlaybackSnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatal(err)
	}
	if !snap.Idle() {
		t.Errorf("first snapshot should be idle, got %+v", snap)
	}

	env.player.ToggleShuffle()
	for {
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatal(err)
		}
		if snap.Shuffle {
			break
		}
	}
}
