package repository

import (
	"context"
	"strings"

	"Sonicbar/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LibraryRepository 本地曲库数据访问接口
type LibraryRepository interface {
	// 搜索，大小写不敏感的子串匹配
	SearchSongs(ctx context.Context, query string) ([]model.Track, error)
	SearchArtists(ctx context.Context, query string) ([]model.Artist, error)
	SearchAlbums(ctx context.Context, query string) ([]model.Album, error)
	SearchPlaylists(ctx context.Context, query string) ([]model.Playlist, error)

	// 查询单条记录，不存在时返回 nil, nil
	GetTrack(ctx context.Context, id string) (*model.Track, error)
	GetPlaylist(ctx context.Context, id string) (*model.Playlist, error)

	// Seed 写入初始数据，已存在的记录保持不变
	Seed(ctx context.Context, data LibrarySeed) error
}

// LibrarySeed 初始曲库数据
type LibrarySeed struct {
	Songs     []model.Track
	Artists   []model.Artist
	Albums    []model.Album
	Playlists []model.Playlist // Songs 字段决定歌单曲目及顺序
}

// gormLibraryRepository GORM 实现
type gormLibraryRepository struct {
	db *gorm.DB
}

// NewGormLibraryRepository 创建 GORM 曲库仓库
func NewGormLibraryRepository(db *gorm.DB) LibraryRepository {
	return &gormLibraryRepository{db: db}
}

// likePattern builds a LIKE pattern matching s anywhere, with the LIKE
// wildcards in s escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func (r *gormLibraryRepository) SearchSongs(ctx context.Context, query string) ([]model.Track, error) {
	var songs []model.Track
	p := likePattern(query)
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(artist) LIKE ?", p, p).
		Order("title").
		Find(&songs).Error
	return songs, err
}

func (r *gormLibraryRepository) SearchArtists(ctx context.Context, query string) ([]model.Artist, error) {
	var artists []model.Artist
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", likePattern(query)).
		Order("followers DESC").
		Find(&artists).Error
	return artists, err
}

func (r *gormLibraryRepository) SearchAlbums(ctx context.Context, query string) ([]model.Album, error) {
	var albums []model.Album
	p := likePattern(query)
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(artist) LIKE ?", p, p).
		Order("year DESC").
		Find(&albums).Error
	return albums, err
}

func (r *gormLibraryRepository) SearchPlaylists(ctx context.Context, query string) ([]model.Playlist, error) {
	var playlists []model.Playlist
	p := likePattern(query)
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", p, p).
		Order("name").
		Find(&playlists).Error
	return playlists, err
}

// GetTrack 根据ID获取曲目
func (r *gormLibraryRepository) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&track).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

// GetPlaylist 获取歌单及其按顺序排列的曲目
func (r *gormLibraryRepository) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	var pl model.Playlist
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pl).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Table(model.Track{}.TableName()).
		Select("tracks.*").
		Joins("JOIN playlist_tracks pt ON pt.track_id = tracks.id").
		Where("pt.playlist_id = ?", id).
		Order("pt.position").
		Find(&pl.Songs).Error
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

// Seed 在一个事务中写入初始数据
func (r *gormLibraryRepository) Seed(ctx context.Context, data LibrarySeed) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true})
		if len(data.Songs) > 0 {
			if err := skip.Create(&data.Songs).Error; err != nil {
				return err
			}
		}
		if len(data.Artists) > 0 {
			if err := skip.Create(&data.Artists).Error; err != nil {
				return err
			}
		}
		if len(data.Albums) > 0 {
			if err := skip.Create(&data.Albums).Error; err != nil {
				return err
			}
		}
		for _, pl := range data.Playlists {
			if err := skip.Create(&pl).Error; err != nil {
				return err
			}
			for i, song := range pl.Songs {
				link := model.PlaylistTrack{PlaylistID: pl.ID, TrackID: song.ID, Position: i}
				if err := skip.Create(&link).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
