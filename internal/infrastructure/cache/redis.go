package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemReconcile/pkg/errors"
)

// RedisConfig holds the connection settings for the redis-backed cache.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	TTL         time.Duration `mapstructure:"ttl"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type redisCache struct {
	rdb        redis.UniversalClient
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	serializer Serializer
}

// RedisOption configures the redis cache.
type RedisOption func(*redisCache)

// WithPrefix overrides the key prefix prepended to every stored key.
func WithPrefix(prefix string) RedisOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// WithDefaultTTL sets the expiry applied when Set is called with ttl 0.
func WithDefaultTTL(ttl time.Duration) RedisOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithSerializer overrides the JSON value codec.
func WithSerializer(s Serializer) RedisOption {
	return func(c *redisCache) { c.serializer = s }
}

// NewRedis connects to redis per cfg and verifies the connection with a ping
// before returning.
func NewRedis(cfg RedisConfig, log logging.Logger, opts ...RedisOption) (Cache, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis connection failed")
	}

	log.Info("Redis cache connected", logging.String("addr", cfg.Addr))

	c := newFromClient(rdb, log, opts...)
	if cfg.KeyPrefix != "" {
		c.prefix = cfg.KeyPrefix
	}
	if cfg.TTL > 0 {
		c.defaultTTL = cfg.TTL
	}
	return c, nil
}

// NewRedisFromClient wraps an existing client.  Tests hand in a mock here.
func NewRedisFromClient(rdb redis.UniversalClient, log logging.Logger, opts ...RedisOption) Cache {
	return newFromClient(rdb, log, opts...)
}

func newFromClient(rdb redis.UniversalClient, log logging.Logger, opts ...RedisOption) *redisCache {
	c := &redisCache{
		rdb:        rdb,
		logger:     log,
		prefix:     "chemrec:",
		defaultTTL: 24 * time.Hour,
		serializer: &jsonSerializer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	return c.serializer.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := c.rdb.Set(ctx, c.fullKey(key), data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	return c.rdb.Del(ctx, fullKeys...).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
