package catalog

import (
	"strings"

	"Sonicbar/model"

	"github.com/samber/lo"
)

// SourceCatalog marks tracks that came from the catalog.
const SourceCatalog = "catalog"

// LargestImage picks the widest image, or "" when there are none.
func LargestImage(images []model.CatalogImage) string {
	if len(images) == 0 {
		return ""
	}
	return lo.MaxBy(images, func(a, b model.CatalogImage) bool {
		return a.Width*a.Height > b.Width*b.Height
	}).URL
}

// ToTrack maps a catalog track onto a playable queue entry. The preview
// clip is the media locator; tracks without one cannot be played.
func ToTrack(ct model.CatalogTrack) model.Track {
	t := model.Track{
		ID:       ct.ID,
		Title:    ct.Name,
		Artist:   strings.Join(lo.Map(ct.Artists, func(a model.CatalogArtist, _ int) string { return a.Name }), ", "),
		Duration: ct.DurationMs / 1000,
		URL:      ct.PreviewURL,
		Source:   SourceCatalog,
	}
	if ct.Album != nil {
		t.Album = ct.Album.Name
		t.AlbumArt = LargestImage(ct.Album.Images)
	}
	return t
}

// PlayableTracks converts tracks and drops the ones without a preview clip.
// album fills in artwork for album track listings, which omit it.
func PlayableTracks(tracks []model.CatalogTrack, album *model.CatalogAlbum) []model.Track {
	playable := lo.Filter(tracks, func(ct model.CatalogTrack, _ int) bool { return ct.PreviewURL != "" })
	return lo.Map(playable, func(ct model.CatalogTrack, _ int) model.Track {
		t := ToTrack(ct)
		if ct.Album == nil && album != nil {
			t.Album = album.Name
			t.AlbumArt = LargestImage(album.Images)
		}
		return t
	})
}

// PlaylistItemTracks unwraps playlist items, skipping removed tracks.
func PlaylistItemTracks(items []model.CatalogPlaylistItem) []model.CatalogTrack {
	return lo.FilterMap(items, func(it model.CatalogPlaylistItem, _ int) (model.CatalogTrack, bool) {
		if it.Track == nil {
			return model.CatalogTrack{}, false
		}
		return *it.Track, true
	})
}
