package redislib

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
)

// Connection is a sharded redis ring. A nil *Connection is valid and behaves as if redis were
// disabled: writes are dropped and reads miss.
type Connection struct {
	ring *redis.Ring
}

func NewConnection(conf config.RedisConfig) *Connection {
	if !conf.Enabled || len(conf.Shards) == 0 {
		return nil
	}
	addresses := make(map[string]string)
	for _, c := range conf.Shards {
		addresses[c.Name] = c.Address
	}
	return NewConnectionFromRing(redis.NewRing(&redis.RingOptions{
		Addrs:       addresses,
		DialTimeout: 10 * time.Second,
		DB:          conf.DbNum,
	}))
}

func NewConnectionFromRing(ring *redis.Ring) *Connection {
	return &Connection{ring: ring}
}

func (c *Connection) available() bool {
	return c != nil && c.ring != nil
}

func (c *Connection) Ping(ctx context.Context) error {
	if !c.available() {
		return nil
	}
	return c.ring.ForEachShard(ctx, func(ctx2 context.Context, client *redis.Client) error {
		return client.Ping(ctx2).Err()
	})
}

func (c *Connection) Close() {
	if !c.available() {
		return
	}
	if err := c.ring.Close(); err != nil {
		logrus.Warn("Error closing redis ring: ", err)
	}
}
