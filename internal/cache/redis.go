// Package cache реализует кеш опубликованных статей и счётчики просмотров
// поверх Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/newsroom-backend/internal/config"
)

// Cache инкапсулирует подключение к Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get пытается получить значение из кеша по ключу.
// Возвращает false без ошибки, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в кеш с временем жизни.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Db.Set(ctx, key, jsonData, expiration).Err()
}

// Invalidate удаляет значение из кеша по ключу.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.Db.Del(ctx, key).Err()
}

// IncrViews атомарно увеличивает счётчик просмотров статьи и возвращает
// новое значение.
func (c *Cache) IncrViews(ctx context.Context, articleID int) (int64, error) {
	const op = "cache.IncrViews"
	n, err := c.Db.Incr(ctx, viewsKey(articleID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// GetViews возвращает накопленные счётчики просмотров для набора статей.
// Для статей без счётчика возвращается ноль.
func (c *Cache) GetViews(ctx context.Context, articleIDs []int) (map[int]int64, error) {
	const op = "cache.GetViews"
	if len(articleIDs) == 0 {
		return map[int]int64{}, nil
	}

	keys := make([]string, len(articleIDs))
	for i, id := range articleIDs {
		keys[i] = viewsKey(id)
	}
	vals, err := c.Db.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make(map[int]int64, len(articleIDs))
	for i, v := range vals {
		var n int64
		if s, ok := v.(string); ok {
			if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		result[articleIDs[i]] = n
	}
	return result, nil
}

// PopAllViews забирает и обнуляет все накопленные счётчики просмотров.
// Используется фоновым сбросом счётчиков в базу.
func (c *Cache) PopAllViews(ctx context.Context) (map[int]int64, error) {
	const op = "cache.PopAllViews"

	result := make(map[int]int64)
	iter := c.Db.Scan(ctx, 0, "article:views:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := c.Db.GetDel(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		var id int
		var n int64
		if _, err = fmt.Sscanf(key, "article:views:%d", &id); err != nil {
			continue
		}
		if _, err = fmt.Sscanf(val, "%d", &n); err != nil {
			continue
		}
		result[id] = n
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func viewsKey(articleID int) string {
	return fmt.Sprintf("article:views:%d", articleID)
}
