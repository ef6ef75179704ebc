package catalog

import (
	"context"
	"errors"
	"fmt"

	"Sonicbar/model"
)

var (
	ErrUnknownKind   = errors.New("unknown catalog item kind")
	ErrNothingToPlay = errors.New("no playable tracks")
)

// Queue resolves a catalog item into playable tracks: a single track, an
// album, a playlist, an artist's top tracks, or the user's saved tracks
// (kind "saved", id ignored).
func (c *Client) Queue(ctx context.Context, kind, id string) ([]model.Track, error) {
	var tracks []model.Track
	switch kind {
	case "track":
		t, err := c.Track(ctx, id)
		if err != nil {
			return nil, err
		}
		tracks = PlayableTracks([]model.CatalogTrack{*t}, nil)
	case "album":
		a, err := c.Album(ctx, id)
		if err != nil {
			return nil, err
		}
		var items []model.CatalogTrack
		if a.Tracks != nil {
			items = a.Tracks.Items
		} else {
			p, err := c.AlbumTracks(ctx, id)
			if err != nil {
				return nil, err
			}
			items = p.Items
		}
		tracks = PlayableTracks(items, a)
	case "playlist":
		p, err := c.PlaylistTracks(ctx, id)
		if err != nil {
			return nil, err
		}
		tracks = PlayableTracks(PlaylistItemTracks(p.Items), nil)
	case "artist":
		top, err := c.ArtistTopTracks(ctx, id, "")
		if err != nil {
			return nil, err
		}
		tracks = PlayableTracks(top, nil)
	case "saved":
		p, err := c.SavedTracks(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]model.CatalogTrack, 0, len(p.Items))
		for _, s := range p.Items {
			items = append(items, s.Track)
		}
		tracks = PlayableTracks(items, nil)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if len(tracks) == 0 {
		return nil, ErrNothingToPlay
	}
	return tracks, nil
}
