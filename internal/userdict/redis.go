package userdict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"GoSplit/internal/analysis"
)

// DefaultRedisPrefix is the key prefix of the split hashes.
const DefaultRedisPrefix = "split_dict"

// RedisDict stores splits in two Redis hashes, <prefix>:A and <prefix>:B,
// mapping a surface to its space-separated parts.
type RedisDict struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisDict wraps client. An empty prefix uses DefaultRedisPrefix.
func NewRedisDict(client *redis.Client, prefix string) *RedisDict {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisDict{client: client, prefix: prefix, timeout: 200 * time.Millisecond}
}

func (d *RedisDict) key(mode analysis.SplitMode) string {
	return d.prefix + ":" + mode.String()
}

// Add stores parts as the split of surface for mode.
func (d *RedisDict) Add(ctx context.Context, surface string, mode analysis.SplitMode, parts ...string) error {
	if err := Validate(surface, mode, parts); err != nil {
		return err
	}
	if err := d.client.HSet(ctx, d.key(mode), surface, strings.Join(parts, " ")).Err(); err != nil {
		return fmt.Errorf("userdict: add %q: %w", surface, err)
	}
	return nil
}

// Remove deletes both splits of surface.
func (d *RedisDict) Remove(ctx context.Context, surface string) error {
	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, d.key(analysis.SplitA), surface)
		pipe.HDel(ctx, d.key(analysis.SplitB), surface)
		return nil
	})
	if err != nil {
		return fmt.Errorf("userdict: remove %q: %w", surface, err)
	}
	return nil
}

// Lookup implements Source. Each call is bounded by the dictionary timeout.
func (d *RedisDict) Lookup(ctx context.Context, surface string, mode analysis.SplitMode) ([]string, bool, error) {
	if mode != analysis.SplitA && mode != analysis.SplitB {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	v, err := d.client.HGet(ctx, d.key(mode), surface).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("userdict: lookup %q: %w", surface, err)
	}
	return strings.Fields(v), true, nil
}

// All returns every stored entry keyed by surface.
func (d *RedisDict) All(ctx context.Context) (map[string]Entry, error) {
	out := make(map[string]Entry)
	for _, mode := range []analysis.SplitMode{analysis.SplitA, analysis.SplitB} {
		m, err := d.client.HGetAll(ctx, d.key(mode)).Result()
		if err != nil {
			return nil, fmt.Errorf("userdict: list %v splits: %w", mode, err)
		}
		for surface, v := range m {
			e := out[surface]
			if mode == analysis.SplitA {
				e.A = strings.Fields(v)
			} else {
				e.B = strings.Fields(v)
			}
			out[surface] = e
		}
	}
	return out, nil
}
