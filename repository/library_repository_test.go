package repository

import (
	"context"
	"testing"
)

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"Heat":    "%heat%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
		"":        "%%",
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryLibrarySearch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLibraryRepository()
	if err := repo.Seed(ctx, SampleLibrary()); err != nil {
		t.Fatal(err)
	}

	songs, _ := repo.SearchSongs(ctx, "WEEKND")
	if len(songs) != 1 || songs[0].ID != "s1" {
		t.Errorf("artist match failed: %+v", songs)
	}
	songs, _ = repo.SearchSongs(ctx, "as it")
	if len(songs) != 1 || songs[0].ID != "s2" {
		t.Errorf("title match failed: %+v", songs)
	}

	artists, _ := repo.SearchArtists(ctx, "bad")
	if len(artists) != 1 || artists[0].ID != "a3" {
		t.Errorf("unexpected artists %+v", artists)
	}

	albums, _ := repo.SearchAlbums(ctx, "harry")
	if len(albums) != 1 || albums[0].ID != "al2" {
		t.Errorf("unexpected albums %+v", albums)
	}

	playlists, _ := repo.SearchPlaylists(ctx, "lo-fi")
	if len(playlists) != 1 || playlists[0].ID != "pl4" {
		t.Errorf("unexpected playlists %+v", playlists)
	}
	playlists, _ = repo.SearchPlaylists(ctx, "españa")
	if len(playlists) != 1 || playlists[0].ID != "pl6" {
		t.Errorf("description match failed: %+v", playlists)
	}
}

func TestMemoryLibraryLookupsAndSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLibraryRepository()
	repo.Seed(ctx, SampleLibrary())
	repo.Seed(ctx, SampleLibrary())

	songs, _ := repo.SearchSongs(ctx, "")
	if len(songs) != 5 {
		t.Errorf("seeding twice should not duplicate, got %d songs", len(songs))
	}

	if tr, err := repo.GetTrack(ctx, "s3"); err != nil || tr == nil || tr.Title != "Heat Waves" {
		t.Errorf("GetTrack(s3) = %+v, %v", tr, err)
	}
	if tr, err := repo.GetTrack(ctx, "nope"); err != nil || tr != nil {
		t.Errorf("missing track should be nil, nil; got %+v, %v", tr, err)
	}

	pl, err := repo.GetPlaylist(ctx, "pl6")
	if err != nil || pl == nil {
		t.Fatalf("GetPlaylist(pl6) = %+v, %v", pl, err)
	}
	if len(pl.Songs) != 2 || pl.Songs[0].ID != "s5" || pl.Songs[1].ID != "s1" {
		t.Errorf("playlist order not kept: %+v", pl.Songs)
	}
	pl.Songs[0].Title = "mutated"
	again, _ := repo.GetPlaylist(ctx, "pl6")
	if again.Songs[0].Title == "mutated" {
		t.Error("GetPlaylist must return a copy")
	}
}
