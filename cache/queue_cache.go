package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"Sonicbar/model"

	"github.com/go-redis/redis/v8"
)

// QueueTTL 保存的队列在 Redis 中的有效期
const QueueTTL = 24 * time.Hour

const queueKeyPrefix = "sonicbar:queue:"

// ErrQueueNotFound 队列不存在或已过期
var ErrQueueNotFound = errors.New("saved queue not found")

// QueueItem 队列中的一个条目，Position 为有序集合的分数
type QueueItem struct {
	model.Track
	Position int `json:"position"`
}

// GetQueueKey 根据队列名生成Redis键
func GetQueueKey(name string) string {
	return queueKeyPrefix + strings.ToLower(strings.TrimSpace(name))
}

// queueName is the inverse of GetQueueKey.
func queueName(key string) string {
	return strings.TrimPrefix(key, queueKeyPrefix)
}

// encodeQueue 将曲目转换为有序集合成员，分数为位置
func encodeQueue(tracks []model.Track) ([]*redis.Z, error) {
	members := make([]*redis.Z, 0, len(tracks))
	for i, t := range tracks {
		data, err := json.Marshal(QueueItem{Track: t, Position: i})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal queue item: %w", err)
		}
		members = append(members, &redis.Z{Score: float64(i), Member: data})
	}
	return members, nil
}

// decodeQueue 解析成员并按位置排序
func decodeQueue(members []string) ([]model.Track, error) {
	items := make([]QueueItem, 0, len(members))
	for _, m := range members {
		var item QueueItem
		if err := json.Unmarshal([]byte(m), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal queue item: %w", err)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	tracks := make([]model.Track, len(items))
	for i, item := range items {
		tracks[i] = item.Track
	}
	return tracks, nil
}

// SaveQueue 保存播放队列，覆盖同名队列
func SaveQueue(ctx context.Context, name string, tracks []model.Track) error {
	rc, err := client()
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("cannot save an empty queue")
	}
	members, err := encodeQueue(tracks)
	if err != nil {
		return err
	}

	key := GetQueueKey(name)
	_, err = rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.ZAdd(ctx, key, members...)
		pipe.Expire(ctx, key, QueueTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}
	return nil
}

// LoadQueue 读取保存的队列
func LoadQueue(ctx context.Context, name string) ([]model.Track, error) {
	rc, err := client()
	if err != nil {
		return nil, err
	}

	result, err := rc.ZRangeByScore(ctx, GetQueueKey(name), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrQueueNotFound
	}
	return decodeQueue(result)
}

// DeleteQueue 删除保存的队列
func DeleteQueue(ctx context.Context, name string) error {
	rc, err := client()
	if err != nil {
		return err
	}
	n, err := rc.Del(ctx, GetQueueKey(name)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete queue: %w", err)
	}
	if n == 0 {
		return ErrQueueNotFound
	}
	return nil
}

// ListQueues 列出所有保存的队列名
func ListQueues(ctx context.Context) ([]string, error) {
	rc, err := client()
	if err != nil {
		return nil, err
	}

	var names []string
	iter := rc.Scan(ctx, 0, queueKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, queueName(iter.Val()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan queues: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// RedisQueues 把队列函数包装成接口，供控制台和服务端使用
type RedisQueues struct{}

func (RedisQueues) Save(ctx context.Context, name string, tracks []model.Track) error {
	return SaveQueue(ctx, name, tracks)
}

func (RedisQueues) Load(ctx context.Context, name string) ([]model.Track, error) {
	return LoadQueue(ctx, name)
}

func (RedisQueues) Delete(ctx context.Context, name string) error {
	return DeleteQueue(ctx, name)
}

func (RedisQueues) List(ctx context.Context) ([]string, error) {
	return ListQueues(ctx)
}
