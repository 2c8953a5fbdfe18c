package redislib

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

func (c *Connection) Publish(ctx rcontext.RequestContext, channel string, payload string) error {
	if !c.available() {
		return nil
	}

	r := c.ring.Publish(ctx.Context, channel, payload)
	if r.Err() != nil {
		if errors.Is(r.Err(), redis.Nil) {
			ctx.Log.Warn("Not broadcasting to Redis - no connections available")
			return nil
		}
		return r.Err()
	}
	return nil
}

// Subscribe delivers payloads published to the channel until ctx is done. The returned channel is
// closed when the subscription ends. Returns nil when redis is not available.
func (c *Connection) Subscribe(ctx context.Context, channel string) <-chan string {
	if !c.available() {
		return nil
	}

	sub := c.ring.Subscribe(ctx, channel)
	ch := make(chan string)
	go func() {
		defer close(ch)
		defer sub.Close()
		recvCh := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case val, ok := <-recvCh:
				if !ok {
					return
				}
				select {
				case ch <- val.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}
