package model

// 曲库 Web API 的响应结构，只保留客户端实际使用的字段。

// CatalogImage 图片
type CatalogImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CatalogFollowers 关注数
type CatalogFollowers struct {
	Total int64 `json:"total"`
}

// CatalogArtist 艺术家信息
type CatalogArtist struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	URI        string           `json:"uri"`
	Genres     []string         `json:"genres,omitempty"`
	Images     []CatalogImage   `json:"images,omitempty"`
	Followers  CatalogFollowers `json:"followers"`
	Popularity int              `json:"popularity,omitempty"`
}

// CatalogAlbum 专辑信息
type CatalogAlbum struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	URI         string                `json:"uri"`
	AlbumType   string                `json:"album_type"`
	ReleaseDate string                `json:"release_date"`
	TotalTracks int                   `json:"total_tracks"`
	Artists     []CatalogArtist       `json:"artists"`
	Images      []CatalogImage        `json:"images"`
	Tracks      *Paging[CatalogTrack] `json:"tracks,omitempty"`
}

// CatalogTrack 曲目信息
type CatalogTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	URI         string          `json:"uri"`
	DurationMs  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	PreviewURL  string          `json:"preview_url"`
	TrackNumber int             `json:"track_number"`
	Artists     []CatalogArtist `json:"artists"`
	Album       *CatalogAlbum   `json:"album,omitempty"`
}

// Paging 分页容器
type Paging[T any] struct {
	Href     string `json:"href"`
	Items    []T    `json:"items"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Total    int    `json:"total"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

// CatalogUser 当前用户
type CatalogUser struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Email       string           `json:"email,omitempty"`
	Country     string           `json:"country,omitempty"`
	Product     string           `json:"product,omitempty"`
	Images      []CatalogImage   `json:"images,omitempty"`
	Followers   CatalogFollowers `json:"followers"`
}

// CatalogPlaylist 歌单
type CatalogPlaylist struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	Description   string                       `json:"description"`
	URI           string                       `json:"uri"`
	Public        bool                         `json:"public"`
	Collaborative bool                         `json:"collaborative"`
	Images        []CatalogImage               `json:"images"`
	Owner         CatalogUser                  `json:"owner"`
	Tracks        *Paging[CatalogPlaylistItem] `json:"tracks,omitempty"`
}

// CatalogPlaylistItem 歌单中的条目
type CatalogPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *CatalogTrack `json:"track"`
}

// CatalogSavedTrack 用户收藏的曲目
type CatalogSavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   CatalogTrack `json:"track"`
}

// CatalogSearchResult 搜索结果，未请求的类型为 nil
type CatalogSearchResult struct {
	Tracks    *Paging[CatalogTrack]    `json:"tracks,omitempty"`
	Artists   *Paging[CatalogArtist]   `json:"artists,omitempty"`
	Albums    *Paging[CatalogAlbum]    `json:"albums,omitempty"`
	Playlists *Paging[CatalogPlaylist] `json:"playlists,omitempty"`
}

// CatalogDevice 播放设备
type CatalogDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// CatalogPlaybackState 远端播放状态
type CatalogPlaybackState struct {
	Device       CatalogDevice `json:"device"`
	RepeatState  string        `json:"repeat_state"`
	ShuffleState bool          `json:"shuffle_state"`
	ProgressMs   int           `json:"progress_ms"`
	IsPlaying    bool          `json:"is_playing"`
	Item         *CatalogTrack `json:"item"`
}

// CatalogCategory 浏览分类
type CatalogCategory struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Icons []CatalogImage `json:"icons"`
}
