package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var _ ports.SchemaCache = (*RedisCache)(nil)

const keyPrefix = "atlas:model"

// RedisConfig holds the connection settings for the shared schema cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache shares decoded models between server instances. Redis failures are
// logged and treated as misses; the database stays the source of truth.
type RedisCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisClient opens a client and pings it once
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	logrus.WithField("addr", cfg.Addr).Info("✅ redis schema cache connected")
	return rc, nil
}

func NewRedisCache(rc *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rc: rc, ttl: ttl}
}

// Key returns the redis key of a model
func Key(id int64) string {
	return fmt.Sprintf("%s:%d", keyPrefix, id)
}

func (c *RedisCache) Get(ctx context.Context, id int64) (*models.Model, bool) {
	raw, err := c.rc.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("model_id", id).Warn("⚠️ schema cache get failed")
		}
		return nil, false
	}

	m, err := decodeModel(raw)
	if err != nil {
		logrus.WithError(err).WithField("model_id", id).Warn("⚠️ schema cache entry unreadable")
		return nil, false
	}
	return m, true
}

func (c *RedisCache) Set(ctx context.Context, m *models.Model) {
	if m == nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		logrus.WithError(err).WithField("model_id", m.ID).Warn("⚠️ schema cache encode failed")
		return
	}
	if err := c.rc.Set(ctx, Key(m.ID), raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("model_id", m.ID).Warn("⚠️ schema cache set failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, id int64) {
	if err := c.rc.Del(ctx, Key(id)).Err(); err != nil {
		logrus.WithError(err).WithField("model_id", id).Warn("⚠️ schema cache invalidate failed")
	}
}

// decodeModel restores a cached model; the typed field configs are rebuilt since
// they are not part of the JSON form
func decodeModel(raw []byte) (*models.Model, error) {
	var m models.Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m.Fields == nil {
		m.Fields = []models.Field{}
	}
	models.DecodeFields(m.Fields)
	return &m, nil
}
