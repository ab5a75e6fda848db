package cache

import "gopkg.in/redis.v5"

// RedisRequestCacher keeps the newest MaxNumber entries per key in a redis list, newest first.
type RedisRequestCacher struct {
	MaxNumber int
	client    *redis.Client
}

func CreateRedisCache(client *redis.Client, maxNumber int) *RedisRequestCacher {
	return &RedisRequestCacher{MaxNumber: maxNumber, client: client}
}

// Write pushes value and trims the list in one MULTI/EXEC, so readers never see it over MaxNumber.
func (cacher *RedisRequestCacher) Write(key string, value []byte) error {
	_, err := cacher.client.TxPipelined(func(pipe *redis.Pipeline) error {
		pipe.LPush(key, value)
		pipe.LTrim(key, 0, int64(cacher.MaxNumber-1))
		return nil
	})

	return err
}

func (cacher *RedisRequestCacher) Read(key string) ([]string, error) {
	return cacher.client.LRange(key, 0, int64(cacher.MaxNumber-1)).Result()
}
