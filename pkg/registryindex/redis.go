package registryindex

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

// RedisIndex backs Index with a Redis set per kind, the way
// core/pkg/kernel's RedisLimiterStore keys its token buckets — one set
// member per artifact_id, checked with SISMEMBER.
type RedisIndex struct {
	client *redis.Client
}

// NewRedisIndex returns an index backed by an already-configured client.
func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func redisSetKey(kind artifacts.Kind) string {
	return "adamos:registry_index:" + string(kind)
}

func (r *RedisIndex) Contains(artifactID string, kind artifacts.Kind) (bool, error) {
	return r.client.SIsMember(context.Background(), redisSetKey(kind), artifactID).Result()
}

func (r *RedisIndex) Record(artifactID string, kind artifacts.Kind) error {
	return r.client.SAdd(context.Background(), redisSetKey(kind), artifactID).Err()
}
