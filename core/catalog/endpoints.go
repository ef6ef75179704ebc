package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"Sonicbar/model"
)

// DefaultSearchTypes are the result kinds requested when none are given.
var DefaultSearchTypes = []string{"track", "artist", "album", "playlist"}

const searchLimit = 20

func escape(id string) string { return url.PathEscape(id) }

// CurrentUser 获取当前用户
func (c *Client) CurrentUser(ctx context.Context) (*model.CatalogUser, error) {
	var u model.CatalogUser
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Search 搜索曲目、艺术家、专辑和歌单
func (c *Client) Search(ctx context.Context, query string, types ...string) (*model.CatalogSearchResult, error) {
	if len(types) == 0 {
		types = DefaultSearchTypes
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", strings.Join(types, ","))
	q.Set("limit", strconv.Itoa(searchLimit))

	var res model.CatalogSearchResult
	if err := c.do(ctx, http.MethodGet, "/search", q, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Artist(ctx context.Context, id string) (*model.CatalogArtist, error) {
	var a model.CatalogArtist
	if err := c.do(ctx, http.MethodGet, "/artists/"+escape(id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ArtistAlbums(ctx context.Context, id string) (*model.Paging[model.CatalogAlbum], error) {
	var p model.Paging[model.CatalogAlbum]
	if err := c.do(ctx, http.MethodGet, "/artists/"+escape(id)+"/albums", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ArtistTopTracks uses the client's market when market is empty.
func (c *Client) ArtistTopTracks(ctx context.Context, id, market string) ([]model.CatalogTrack, error) {
	if market == "" {
		market = c.market
	}
	q := url.Values{"country": {market}}
	var res struct {
		Tracks []model.CatalogTrack `json:"tracks"`
	}
	if err := c.do(ctx, http.MethodGet, "/artists/"+escape(id)+"/top-tracks", q, nil, &res); err != nil {
		return nil, err
	}
	return res.Tracks, nil
}

func (c *Client) RelatedArtists(ctx context.Context, id string) ([]model.CatalogArtist, error) {
	var res struct {
		Artists []model.CatalogArtist `json:"artists"`
	}
	if err := c.do(ctx, http.MethodGet, "/artists/"+escape(id)+"/related-artists", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Artists, nil
}

func (c *Client) Album(ctx context.Context, id string) (*model.CatalogAlbum, error) {
	var a model.CatalogAlbum
	if err := c.do(ctx, http.MethodGet, "/albums/"+escape(id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) AlbumTracks(ctx context.Context, id string) (*model.Paging[model.CatalogTrack], error) {
	var p model.Paging[model.CatalogTrack]
	if err := c.do(ctx, http.MethodGet, "/albums/"+escape(id)+"/tracks", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UserPlaylists(ctx context.Context) (*model.Paging[model.CatalogPlaylist], error) {
	var p model.Paging[model.CatalogPlaylist]
	if err := c.do(ctx, http.MethodGet, "/me/playlists", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Playlist(ctx context.Context, id string) (*model.CatalogPlaylist, error) {
	var pl model.CatalogPlaylist
	if err := c.do(ctx, http.MethodGet, "/playlists/"+escape(id), nil, nil, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

func (c *Client) PlaylistTracks(ctx context.Context, id string) (*model.Paging[model.CatalogPlaylistItem], error) {
	var p model.Paging[model.CatalogPlaylistItem]
	if err := c.do(ctx, http.MethodGet, "/playlists/"+escape(id)+"/tracks", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlaylist 为用户创建歌单
func (c *Client) CreatePlaylist(ctx context.Context, userID, name string, public bool) (*model.CatalogPlaylist, error) {
	body := map[string]any{"name": name, "public": public}
	var pl model.CatalogPlaylist
	if err := c.do(ctx, http.MethodPost, "/users/"+escape(userID)+"/playlists", nil, body, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

// AddTracksToPlaylist returns the playlist's new snapshot id.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	var res struct {
		SnapshotID string `json:"snapshot_id"`
	}
	body := map[string]any{"uris": uris}
	if err := c.do(ctx, http.MethodPost, "/playlists/"+escape(playlistID)+"/tracks", nil, body, &res); err != nil {
		return "", err
	}
	return res.SnapshotID, nil
}

func (c *Client) Track(ctx context.Context, id string) (*model.CatalogTrack, error) {
	var t model.CatalogTrack
	if err := c.do(ctx, http.MethodGet, "/tracks/"+escape(id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) SavedTracks(ctx context.Context) (*model.Paging[model.CatalogSavedTrack], error) {
	var p model.Paging[model.CatalogSavedTrack]
	if err := c.do(ctx, http.MethodGet, "/me/tracks", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CheckSavedTracks reports, per id, whether the track is in the user's library.
func (c *Client) CheckSavedTracks(ctx context.Context, ids []string) ([]bool, error) {
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	var res []bool
	if err := c.do(ctx, http.MethodGet, "/me/tracks/contains", q, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) SaveTrack(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/me/tracks", nil, map[string]any{"ids": []string{id}}, nil)
}

func (c *Client) RemoveTrack(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/me/tracks", url.Values{"ids": {id}}, nil, nil)
}

// PlaybackState returns nil when no device is active.
func (c *Client) PlaybackState(ctx context.Context) (*model.CatalogPlaybackState, error) {
	var st model.CatalogPlaybackState
	if err := c.do(ctx, http.MethodGet, "/me/player", nil, nil, &st); err != nil {
		return nil, err
	}
	if st.Device.ID == "" && st.Item == nil {
		return nil, nil
	}
	return &st, nil
}

func (c *Client) Devices(ctx context.Context) ([]model.CatalogDevice, error) {
	var res struct {
		Devices []model.CatalogDevice `json:"devices"`
	}
	if err := c.do(ctx, http.MethodGet, "/me/player/devices", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Devices, nil
}

func (c *Client) NewReleases(ctx context.Context) (*model.Paging[model.CatalogAlbum], error) {
	var res struct {
		Albums model.Paging[model.CatalogAlbum] `json:"albums"`
	}
	if err := c.do(ctx, http.MethodGet, "/browse/new-releases", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Albums, nil
}

// FeaturedPlaylists returns the editorial message and its playlists.
func (c *Client) FeaturedPlaylists(ctx context.Context) (string, *model.Paging[model.CatalogPlaylist], error) {
	var res struct {
		Message   string                              `json:"message"`
		Playlists model.Paging[model.CatalogPlaylist] `json:"playlists"`
	}
	if err := c.do(ctx, http.MethodGet, "/browse/featured-playlists", nil, nil, &res); err != nil {
		return "", nil, err
	}
	return res.Message, &res.Playlists, nil
}

func (c *Client) Categories(ctx context.Context) (*model.Paging[model.CatalogCategory], error) {
	var res struct {
		Categories model.Paging[model.CatalogCategory] `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/browse/categories", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Categories, nil
}

func (c *Client) CategoryPlaylists(ctx context.Context, categoryID string) (*model.Paging[model.CatalogPlaylist], error) {
	var res struct {
		Playlists model.Paging[model.CatalogPlaylist] `json:"playlists"`
	}
	if err := c.do(ctx, http.MethodGet, "/browse/categories/"+escape(categoryID)+"/playlists", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Playlists, nil
}
