package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/lvillar/layoutpdf/design"
)

// DefaultCacheTTL is how long cached templates live.
const DefaultCacheTTL = 10 * time.Minute

// CachedRepository is a read-through Redis cache in front of another
// Repository. Reads are served from Redis when possible; writes go to the
// inner repository and invalidate the affected keys. Redis failures are
// logged and never fail a call the inner repository can serve.
type CachedRepository struct {
	inner  Repository
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *log.Logger
}

// CacheOption configures a CachedRepository.
type CacheOption func(*CachedRepository)

// WithTTL sets the cache entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedRepository) { c.ttl = ttl }
}

// WithKeyPrefix namespaces the cache keys (default "layoutpdf:template:").
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedRepository) { c.prefix = prefix }
}

// WithCacheLogger sets the logger for cache events.
func WithCacheLogger(l *log.Logger) CacheOption {
	return func(c *CachedRepository) { c.logger = l }
}

// NewCachedRepository wraps inner with a cache on client. The caller keeps
// ownership of client.
func NewCachedRepository(inner Repository, client redis.Cmdable, opts ...CacheOption) *CachedRepository {
	c := &CachedRepository{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
		prefix: "layoutpdf:template:",
		logger: log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (c *CachedRepository) key(id string) string { return c.prefix + id }
func (c *CachedRepository) listKey() string      { return c.prefix + "list" }

// load decodes a cached value into v and reports a hit.
func (c *CachedRepository) load(ctx context.Context, key string, v any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", key)
		return false
	}
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("dropping corrupt cache entry", "key", key, "err", err)
		_ = c.client.Del(ctx, key)
		return false
	}
	c.logger.Debug("cache hit", "key", key)
	return true
}

func (c *CachedRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	}
}

func (c *CachedRepository) invalidate(ctx context.Context, ids ...string) {
	keys := []string{c.listKey()}
	for _, id := range ids {
		keys = append(keys, c.key(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "keys", keys, "err", err)
	}
}

func (c *CachedRepository) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	if c.load(ctx, c.listKey(), &out) {
		return out, nil
	}
	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, c.listKey(), out)
	return out, nil
}

func (c *CachedRepository) Get(ctx context.Context, id string) (*design.Document, error) {
	var doc design.Document
	if c.load(ctx, c.key(id), &doc) {
		if doc.Elements == nil {
			doc.Elements = []*design.Element{}
		}
		if err := doc.Validate(); err == nil {
			return &doc, nil
		}
		_ = c.client.Del(ctx, c.key(id))
	}
	d, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, c.key(id), d)
	return d, nil
}

func (c *CachedRepository) Create(ctx context.Context, doc *design.Document) (*design.Document, error) {
	d, err := c.inner.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, d.ID)
	return d, nil
}

func (c *CachedRepository) Update(ctx context.Context, id string, p Patch) (*design.Document, error) {
	d, err := c.inner.Update(ctx, id, p)
	c.invalidate(ctx, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *CachedRepository) Delete(ctx context.Context, id string) error {
	err := c.inner.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedRepository) Duplicate(ctx context.Context, id string) (*design.Document, error) {
	d, err := c.inner.Duplicate(ctx, id)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, d.ID)
	return d, nil
}

var _ Repository = (*CachedRepository)(nil)
