package cursor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const cursorKey = "cursor:%s"

// RedisStore shares cursors between consumer replicas.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) RedisStore {
	return RedisStore{rdb: rdb}
}

func (r RedisStore) Set(key string, cursor int64) {
	k := fmt.Sprintf(cursorKey, key)
	r.rdb.Set(context.Background(), k, cursor, 0)
}

func (r RedisStore) Get(key string) (cursor int64) {
	k := fmt.Sprintf(cursorKey, key)
	val, err := r.rdb.Get(context.Background(), k).Result()
	if err != nil {
		return 0
	}

	cursor, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return cursor
}
