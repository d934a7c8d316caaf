package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/numberline/pkg/cache"
	nlerrors "github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// DefaultRedisPrefix namespaces the keys a [Redis] store writes.
const DefaultRedisPrefix = "numberline:"

// maxTxRetries bounds optimistic-lock retries for creates and edits.
const maxTxRetries = 5

// Redis stores items in a hash of JSON records keyed by ID, ordered by a
// sorted set scored with an insertion sequence number.
type Redis struct {
	client *redis.Client
	items  string // hash: id -> JSON
	order  string // sorted set: id scored by sequence
	seq    string // counter
}

// OpenRedis connects to url and pings the server, retrying transient
// failures.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nlerrors.Wrap(nlerrors.ErrCodeInvalidConfiguration, err, "parse redis url")
	}
	client := redis.NewClient(opts)

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, nlerrors.Wrap(nlerrors.ErrCodeNetwork, err, "ping redis %s", opts.Addr)
	}
	return NewRedis(client, DefaultRedisPrefix), nil
}

// NewRedis wraps an existing client. Keys are prefixed with prefix. The
// store takes ownership of the client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		items:  prefix + "items",
		order:  prefix + "order",
		seq:    prefix + "seq",
	}
}

func (r *Redis) Create(ctx context.Context, it item.Raw) error {
	if err := it.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}

	// The existence check, the hash write and the order entry commit
	// together; a failed EXEC leaves only a gap in the sequence.
	txf := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, r.items, it.ID).Result()
		if err != nil {
			return err
		}
		if exists {
			return conflict(it.ID)
		}
		seq, err := tx.Incr(ctx, r.seq).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, r.items, it.ID, data)
			p.ZAdd(ctx, r.order, redis.Z{Score: float64(seq), Member: it.ID})
			return nil
		})
		return err
	}
	return r.watch(ctx, txf, fmt.Sprintf("create %q", it.ID))
}

func (r *Redis) EditLabel(ctx context.Context, id, label string) error {
	return r.edit(ctx, id, func(it *item.Raw) error {
		if err := nlerrors.ValidateLabel(id, label); err != nil {
			return err
		}
		it.Label = label
		return nil
	})
}

func (r *Redis) EditValue(ctx context.Context, id string, value float64) error {
	return r.edit(ctx, id, func(it *item.Raw) error {
		if err := nlerrors.ValidateValue(id, value); err != nil {
			return err
		}
		it.Value = value
		return nil
	})
}

// edit runs fn on the stored record inside a WATCH transaction.
func (r *Redis) edit(ctx context.Context, id string, fn func(*item.Raw) error) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, r.items, id).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound(id)
		}
		if err != nil {
			return err
		}

		var it item.Raw
		if err := json.Unmarshal(data, &it); err != nil {
			return fmt.Errorf("decode %q: %w", id, err)
		}
		if err := fn(&it); err != nil {
			return err
		}
		if data, err = json.Marshal(it); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, r.items, id, data)
			return nil
		})
		return err
	}

	return r.watch(ctx, txf, fmt.Sprintf("edit %q", id))
}

// watch runs txf under WATCH on the items hash, retrying when another
// writer touched it first.
func (r *Redis) watch(ctx context.Context, txf func(*redis.Tx) error, op string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, r.items)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && nlerrors.GetCode(err) == "" {
			return netErr(err, "%s", op)
		}
		return err
	}
	return nlerrors.New(nlerrors.ErrCodeConflict, "%s: too many concurrent writers", op)
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, r.items, id)
		p.ZRem(ctx, r.order, id)
		return nil
	})
	if err != nil {
		return netErr(err, "delete %q", id)
	}
	return nil
}

func (r *Redis) All(ctx context.Context) ([]item.Raw, error) {
	ids, err := r.client.ZRange(ctx, r.order, 0, -1).Result()
	if err != nil {
		return nil, netErr(err, "list items")
	}
	out := make([]item.Raw, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vals, err := r.client.HMGet(ctx, r.items, ids...).Result()
	if err != nil {
		return nil, netErr(err, "list items")
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue // deleted between ZRANGE and HMGET
		}
		var it item.Raw
		if err := json.Unmarshal([]byte(s), &it); err != nil {
			return nil, fmt.Errorf("decode %q: %w", ids[i], err)
		}
		out = append(out, it)
	}
	return out, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func netErr(err error, format string, args ...any) error {
	return nlerrors.Wrap(nlerrors.ErrCodeNetwork, err, format, args...)
}

var _ Repository = (*Redis)(nil)
