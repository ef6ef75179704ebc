// Package library searches the local music library.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Sonicbar/model"
	"Sonicbar/repository"
)

// Category narrows a search to one kind of result.
type Category string

const (
	CategoryAll       Category = "all"
	CategorySongs     Category = "songs"
	CategoryArtists   Category = "artists"
	CategoryAlbums    Category = "albums"
	CategoryPlaylists Category = "playlists"
)

var (
	ErrUnknownCategory = errors.New("unknown search category")
	ErrNotFound        = errors.New("not found in library")
)

// ParseCategory accepts the category names; "" means all.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategorySongs, CategoryArtists, CategoryAlbums, CategoryPlaylists:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

func (c Category) includes(kind Category) bool {
	return c == CategoryAll || c == "" || c == kind
}

// Results groups matches by kind. Kinds outside the requested category
// stay empty.
type Results struct {
	Songs     []model.Track    `json:"songs"`
	Artists   []model.Artist   `json:"artists"`
	Albums    []model.Album    `json:"albums"`
	Playlists []model.Playlist `json:"playlists"`
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool {
	return len(r.Songs) == 0 && len(r.Artists) == 0 && len(r.Albums) == 0 && len(r.Playlists) == 0
}

// Library 本地曲库
type Library struct {
	repo repository.LibraryRepository
}

func New(repo repository.LibraryRepository) *Library {
	return &Library{repo: repo}
}

// Search runs the query at once. A blank query matches nothing.
func (l *Library) Search(ctx context.Context, query string, category Category) (Results, error) {
	var res Results
	query = strings.TrimSpace(query)
	if query == "" {
		return res, nil
	}

	var err error
	if category.includes(CategorySongs) {
		if res.Songs, err = l.repo.SearchSongs(ctx, query); err != nil {
			return Results{}, fmt.Errorf("search songs: %w", err)
		}
	}
	if category.includes(CategoryArtists) {
		if res.Artists, err = l.repo.SearchArtists(ctx, query); err != nil {
			return Results{}, fmt.Errorf("search artists: %w", err)
		}
	}
	if category.includes(CategoryAlbums) {
		if res.Albums, err = l.repo.SearchAlbums(ctx, query); err != nil {
			return Results{}, fmt.Errorf("search albums: %w", err)
		}
	}
	if category.includes(CategoryPlaylists) {
		if res.Playlists, err = l.repo.SearchPlaylists(ctx, query); err != nil {
			return Results{}, fmt.Errorf("search playlists: %w", err)
		}
	}
	return res, nil
}

// Track looks a song up by id.
func (l *Library) Track(ctx context.Context, id string) (model.Track, error) {
	t, err := l.repo.GetTrack(ctx, id)
	if err != nil {
		return model.Track{}, err
	}
	if t == nil {
		return model.Track{}, fmt.Errorf("%w: track %s", ErrNotFound, id)
	}
	return *t, nil
}

// PlaylistSongs returns a playlist's songs in order.
func (l *Library) PlaylistSongs(ctx context.Context, id string) ([]model.Track, error) {
	pl, err := l.repo.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, fmt.Errorf("%w: playlist %s", ErrNotFound, id)
	}
	return pl.Songs, nil
}
