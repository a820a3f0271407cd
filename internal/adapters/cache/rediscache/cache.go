package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss indica que la clave no existe (o expiró).
var ErrCacheMiss = errors.New("cache miss")

const DefaultTTL = 60 * time.Second

// Cache es un cache JSON con TTL corto para las métricas de paciente.
// La invalidación es solo por expiración: las métricas se recomputan desde
// los logs en cada miss, así que un TTL corto mantiene frescura sin
// bookkeeping de invalidación por escritura.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// NewClientFromEnv crea el cliente redis desde env:
// - REDIS_ADDR=host:port (si está vacío, no hay cache)
// - REDIS_PASSWORD (opcional)
// - REDIS_DB (opcional, default 0)
func NewClientFromEnv() *redis.Client {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil
	}

	db := 0
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			db = n
		}
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})
}

func (c *Cache) GetJSON(ctx context.Context, key string, out any) error {
	if c == nil || c.client == nil {
		return ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, c.ttl).Err()
}
