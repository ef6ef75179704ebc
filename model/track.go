package model

import "time"

// Track 单首可播放曲目。构造后不再修改，队列和会话之间按值传递。
type Track struct {
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	Title    string `json:"title" gorm:"size:255;not null;index"`
	Artist   string `json:"artist" gorm:"size:255;index"`
	Album    string `json:"album" gorm:"size:255"`
	AlbumArt string `json:"albumArt" gorm:"size:512"`
	Duration int    `json:"duration"` // 时长（秒）
	// 媒体定位: http(s)://, file://, minio://bucket/object 或本地路径
	URL    string `json:"url" gorm:"size:1024"`
	Source string `json:"source,omitempty" gorm:"size:20;default:'local'"` // local, catalog
}

// TableName 指定表名
func (Track) TableName() string {
	return "tracks"
}

// Length returns the track duration as a time.Duration.
func (t Track) Length() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

// Playlist 歌单
type Playlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"size:255;not null;index"`
	Description string    `json:"description,omitempty" gorm:"size:1024"`
	CoverImage  string    `json:"coverImage,omitempty" gorm:"size:512"`
	Songs       []Track   `json:"songs" gorm:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistTrack 歌单与曲目的关联，Position 决定播放顺序
type PlaylistTrack struct {
	PlaylistID string `gorm:"primaryKey;size:64"`
	TrackID    string `gorm:"primaryKey;size:64"`
	Position   int    `gorm:"index"`
}

// TableName 指定表名
func (PlaylistTrack) TableName() string {
	return "playlist_tracks"
}
