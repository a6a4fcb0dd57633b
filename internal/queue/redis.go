package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Producer and Consumer over redis lists. LPUSH/BRPOP gives
// FIFO per queue; multiple workers may drain the same list concurrently.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Enqueue(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, queue, data).Err()
}

func (r *Redis) Dequeue(ctx context.Context, queue string) ([]byte, error) {
	for {
		// A bounded block so ctx cancellation is observed between polls.
		res, err := r.client.BRPop(ctx, 5*time.Second, queue).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		// BRPOP returns [key, value].
		return []byte(res[1]), nil
	}
}
