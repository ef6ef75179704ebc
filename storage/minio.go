package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"Sonicbar/config"
	"Sonicbar/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore 封装 MinIO 客户端，为 minio://bucket/key 媒体地址生成临时下载链接
type ObjectStore struct {
	client *minio.Client
}

// MediaObject 存储桶中的一个音频文件
type MediaObject struct {
	Bucket       string
	Key          string
	Size         int64
	LastModified time.Time
}

// Locator 返回可以放进队列的媒体地址
func (o MediaObject) Locator() string {
	return "minio://" + o.Bucket + "/" + o.Key
}

// Title 用文件名（去掉扩展名）作为标题
func (o MediaObject) Title() string {
	base := path.Base(o.Key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// NewObjectStore 初始化 MinIO 客户端。未配置 endpoint 时返回 nil, nil。
func NewObjectStore(cfg *config.Config) (*ObjectStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	logger.Info("[Storage] MinIO 客户端已创建",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("region", cfg.MinioRegion),
		logger.Bool("ssl", cfg.MinioUseSSL))
	return &ObjectStore{client: client}, nil
}

// PresignGet 生成对象的临时下载链接
func (s *ObjectStore) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("生成下载链接失败: %w", err)
	}
	logger.Debug("[Storage] 生成下载链接", logger.String("bucket", bucket), logger.String("key", key))
	return u, nil
}

// ListAudio 列出存储桶中前缀下的音频文件，按 key 排序
func (s *ObjectStore) ListAudio(ctx context.Context, bucket, prefix string) ([]MediaObject, error) {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("存储桶不存在: %s", bucket)
	}

	var objects []MediaObject
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		if !IsAudioKey(object.Key) {
			continue
		}
		objects = append(objects, MediaObject{
			Bucket:       bucket,
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// IsAudioKey 根据扩展名判断是否是可解码的音频（目前只支持 mp3）
func IsAudioKey(key string) bool {
	return strings.EqualFold(path.Ext(key), ".mp3")
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
