package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU — кэш в памяти процесса. Используется, когда Redis не настроен.
// Время жизни записей общее и задаётся при создании; аргумент expiration в Set игнорируется.
type LRU struct {
	cache *expirable.LRU[string, []byte]
}

// NewLRU создаёт кэш на size записей с временем жизни ttl.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = 1
	}
	return &LRU{cache: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get читает значение по ключу в result. Возвращает false, если ключа нет или он истёк.
func (c *LRU) Get(_ context.Context, key string, result any) (bool, error) {
	const op = "cache.LRU.Get"
	val, ok := c.cache.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в JSON.
func (c *LRU) Set(_ context.Context, key string, value any, _ time.Duration) error {
	const op = "cache.LRU.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.cache.Add(key, jsonData)
	return nil
}

// Close очищает кэш.
func (c *LRU) Close() error {
	c.cache.Purge()
	return nil
}
