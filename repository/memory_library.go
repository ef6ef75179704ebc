package repository

import (
	"context"
	"strings"
	"sync"

	"Sonicbar/model"

	"github.com/samber/lo"
)

// memoryLibraryRepository keeps the library in process memory.
type memoryLibraryRepository struct {
	mu        sync.RWMutex
	songs     []model.Track
	artists   []model.Artist
	albums    []model.Album
	playlists []model.Playlist
}

// NewMemoryLibraryRepository 创建内存曲库
func NewMemoryLibraryRepository() LibraryRepository {
	return &memoryLibraryRepository{}
}

func contains(field, query string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(query))
}

func (r *memoryLibraryRepository) SearchSongs(_ context.Context, query string) ([]model.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.songs, func(s model.Track, _ int) bool {
		return contains(s.Title, query) || contains(s.Artist, query)
	}), nil
}

func (r *memoryLibraryRepository) SearchArtists(_ context.Context, query string) ([]model.Artist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.artists, func(a model.Artist, _ int) bool {
		return contains(a.Name, query)
	}), nil
}

func (r *memoryLibraryRepository) SearchAlbums(_ context.Context, query string) ([]model.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.albums, func(a model.Album, _ int) bool {
		return contains(a.Title, query) || contains(a.Artist, query)
	}), nil
}

func (r *memoryLibraryRepository) SearchPlaylists(_ context.Context, query string) ([]model.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.playlists, func(p model.Playlist, _ int) bool {
		return contains(p.Name, query) || contains(p.Description, query)
	}), nil
}

func (r *memoryLibraryRepository) GetTrack(_ context.Context, id string) (*model.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := lo.Find(r.songs, func(s model.Track) bool { return s.ID == id }); ok {
		return &t, nil
	}
	return nil, nil
}

func (r *memoryLibraryRepository) GetPlaylist(_ context.Context, id string) (*model.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := lo.Find(r.playlists, func(p model.Playlist) bool { return p.ID == id }); ok {
		p.Songs = append([]model.Track(nil), p.Songs...)
		return &p, nil
	}
	return nil, nil
}

func (r *memoryLibraryRepository) Seed(_ context.Context, data LibrarySeed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.songs = mergeByID(r.songs, data.Songs, func(t model.Track) string { return t.ID })
	r.artists = mergeByID(r.artists, data.Artists, func(a model.Artist) string { return a.ID })
	r.albums = mergeByID(r.albums, data.Albums, func(a model.Album) string { return a.ID })
	r.playlists = mergeByID(r.playlists, data.Playlists, func(p model.Playlist) string { return p.ID })
	return nil
}

// mergeByID appends the items whose id is not present yet.
func mergeByID[T any](have, add []T, id func(T) string) []T {
	seen := lo.SliceToMap(have, func(t T) (string, struct{}) { return id(t), struct{}{} })
	for _, item := range add {
		if _, ok := seen[id(item)]; ok {
			continue
		}
		seen[id(item)] = struct{}{}
		have = append(have, item)
	}
	return have
}
