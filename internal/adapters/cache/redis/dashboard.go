// Package redis implementa health.DashboardCache sobre Redis (go-redis/v9).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"purrr-love/internal/domain/health"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "purrr:dashboard:"
	DefaultTTL    = 30 * time.Second
)

// cmdable es el subconjunto de *goredis.Client que usamos.
type cmdable interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

type DashboardCache struct {
	rc     cmdable
	prefix string
	ttl    time.Duration
}

type Options struct {
	Prefix string
	TTL    time.Duration
}

func NewDashboardCache(rc cmdable, opts Options) *DashboardCache {
	c := &DashboardCache{rc: rc, prefix: opts.Prefix, ttl: opts.TTL}
	if strings.TrimSpace(c.prefix) == "" {
		c.prefix = DefaultPrefix
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	return c
}

// NewClient arma el cliente y hace un ping para fallar temprano.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rc := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rc, nil
}

func (c *DashboardCache) key(ownerUserID string) string {
	return c.prefix + strings.TrimSpace(ownerUserID)
}

func (c *DashboardCache) Get(ctx context.Context, ownerUserID string) (health.Dashboard, bool, error) {
	b, err := c.rc.Get(ctx, c.key(ownerUserID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return health.Dashboard{}, false, nil
	}
	if err != nil {
		return health.Dashboard{}, false, fmt.Errorf("redis: get dashboard: %w", err)
	}

	var d health.Dashboard
	if err := json.Unmarshal(b, &d); err != nil {
		// entrada corrupta: se trata como miss y se pisa en el próximo Set
		return health.Dashboard{}, false, nil
	}
	return d, true, nil
}

func (c *DashboardCache) Set(ctx context.Context, ownerUserID string, d health.Dashboard) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("redis: encode dashboard: %w", err)
	}
	if err := c.rc.Set(ctx, c.key(ownerUserID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set dashboard: %w", err)
	}
	return nil
}

func (c *DashboardCache) Invalidate(ctx context.Context, ownerUserID string) error {
	if err := c.rc.Del(ctx, c.key(ownerUserID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate dashboard: %w", err)
	}
	return nil
}
