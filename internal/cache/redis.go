package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/jobskills/internal/store"
)

const (
	keyPrefix = "jobskills:"

	// DefaultTTL bounds how long a shared entry survives without a purge.
	DefaultTTL = 10 * time.Minute
)

// RedisOptions configures a Redis-backed cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration

	// Namespace separates caches of different databases sharing one
	// server. See Namespace.
	Namespace string
}

// Namespace derives a Redis key namespace from a database path.
func Namespace(dbPath string) string {
	return strconv.FormatUint(xxhash.Sum64String(dbPath), 16)
}

func prefixFor(namespace string) string {
	if namespace == "" {
		return keyPrefix
	}
	return keyPrefix + namespace + ":"
}

// Redis is a Cache shared across processes. When the server is
// unreachable it degrades to a pass-through and warns once.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    logrus.FieldLogger

	warnedUnavailable atomic.Bool
}

// NewRedis connects to the server described by opts. A failed ping
// yields a bypassing cache rather than an error.
func NewRedis(ctx context.Context, opts RedisOptions, log logrus.FieldLogger) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if log != nil {
			log.WithError(err).WithField("addr", opts.Addr).Warn("redis unavailable, bypassing cache")
		}
		_ = client.Close()
		return &Redis{prefix: prefixFor(opts.Namespace), ttl: opts.TTL, log: log}
	}
	return &Redis{client: client, prefix: prefixFor(opts.Namespace), ttl: opts.TTL, log: log}
}

// Available reports whether reads and writes reach the server.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) warnOnce(err error) {
	if r.log == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.log.WithError(err).Warn("redis cache error, continuing without cache")
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]store.Row, bool) {
	if !r.Available() {
		return nil, false
	}
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warnOnce(err)
		}
		return nil, false
	}
	rows, err := decodeRows(b)
	if err != nil {
		r.warnOnce(err)
		return nil, false
	}
	return rows, true
}

func (r *Redis) Set(ctx context.Context, key string, rows []store.Row) {
	if !r.Available() {
		return
	}
	b, err := json.Marshal(rows)
	if err != nil {
		r.warnOnce(err)
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		r.warnOnce(err)
	}
}

// Purge deletes every entry in this cache's namespace.
func (r *Redis) Purge(ctx context.Context) {
	if !r.Available() {
		return
	}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.warnOnce(err)
		}
	}
	if err := iter.Err(); err != nil {
		r.warnOnce(err)
	}
}

// Close releases the client connection.
func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

// decodeRows restores the store's value types: whole numbers become
// int64, other numbers float64.
func decodeRows(b []byte) ([]store.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	rows := make([]store.Row, len(raw))
	for i, m := range raw {
		row := make(store.Row, len(m))
		for k, v := range m {
			if n, ok := v.(json.Number); ok {
				if iv, err := n.Int64(); err == nil {
					row[k] = iv
				} else if fv, err := n.Float64(); err == nil {
					row[k] = fv
				} else {
					row[k] = n.String()
				}
				continue
			}
			row[k] = v
		}
		rows[i] = row
	}
	return rows, nil
}
