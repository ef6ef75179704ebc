package library

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Sonicbar/repository"
)

func newSampleLibrary(t *testing.T) *Library {
	t.Helper()
	repo := repository.NewMemoryLibraryRepository()
	if err := repo.Seed(context.Background(), repository.SampleLibrary()); err != nil {
		t.Fatal(err)
	}
	return New(repo)
}

func TestSearchBlankQuery(t *testing.T) {
	lib := newSampleLibrary(t)
	for _, q := range []string{"", "   ", "\t"} {
		res, err := lib.Search(context.Background(), q, CategoryAll)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Empty() {
			t.Errorf("query %q should match nothing, got %+v", q, res)
		}
	}
}

func TestSearchAllCategories(t *testing.T) {
	lib := newSampleLibrary(t)
	res, err := lib.Search(context.Background(), "the weeknd", CategoryAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Songs) != 1 || len(res.Artists) != 1 || len(res.Albums) != 1 {
		t.Errorf("unexpected results %+v", res)
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	lib := newSampleLibrary(t)
	res, err := lib.Search(context.Background(), "bad bunny", CategoryAlbums)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Albums) != 1 || res.Albums[0].ID != "al3" {
		t.Errorf("expected album al3, got %+v", res.Albums)
	}
	if len(res.Artists) != 0 || len(res.Songs) != 0 {
		t.Errorf("other kinds should be empty: %+v", res)
	}
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{"": CategoryAll, "Songs": CategorySongs, " playlists ": CategoryPlaylists} {
		got, err := ParseCategory(in)
		if err != nil || got != want {
			t.Errorf("ParseCategory(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCategory("podcasts"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestTrackAndPlaylistLookups(t *testing.T) {
	lib := newSampleLibrary(t)
	ctx := context.Background()

	tr, err := lib.Track(ctx, "s2")
	if err != nil || tr.Title != "As It Was" {
		t.Errorf("Track(s2) = %+v, %v", tr, err)
	}
	if _, err := lib.Track(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	songs, err := lib.PlaylistSongs(ctx, "pl5")
	if err != nil || len(songs) != 5 {
		t.Errorf("PlaylistSongs(pl5) = %d songs, %v", len(songs), err)
	}
	if _, err := lib.PlaylistSongs(ctx, "pl99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearcherDelaysAndSupersedes(t *testing.T) {
	s := NewSearcher(newSampleLibrary(t), 100*time.Millisecond)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.Search(ctx, "hea", CategoryAll)
	}()

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	res, err := s.Search(ctx, "heat", CategorySongs)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("search ran before its delay: %v", elapsed)
	}
	if len(res.Songs) != 1 || res.Songs[0].ID != "s3" {
		t.Errorf("unexpected results %+v", res)
	}

	wg.Wait()
	if !errors.Is(firstErr, ErrSuperseded) {
		t.Errorf("first search should be superseded, got %v", firstErr)
	}
}

func TestSearcherBlankIsImmediate(t *testing.T) {
	s := NewSearcher(newSampleLibrary(t), time.Hour)
	res, err := s.Search(context.Background(), "  ", CategoryAll)
	if err != nil || !res.Empty() {
		t.Errorf("blank query: %+v, %v", res, err)
	}
}

func TestSearcherHonoursContext(t *testing.T) {
	s := NewSearcher(newSampleLibrary(t), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Search(ctx, "heat", CategoryAll); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
