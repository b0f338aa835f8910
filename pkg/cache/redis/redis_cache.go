package rediscache

import (
	"github.com/gomodule/redigo/redis"

	"github.com/moonwalker/searchkit/pkg/cache"
)

var delScript = redis.NewScript(0, `for i, k in ipairs(redis.call('KEYS', ARGV[1])) do redis.call('DEL', k) end`)

type rediscache struct {
	pool *redis.Pool
}

func New(redisURL string) cache.Cache {
	return &rediscache{
		pool: &redis.Pool{
			MaxActive: 5,
			MaxIdle:   5,
			Wait:      true,
			Dial: func() (redis.Conn, error) {
				return redis.DialURL(redisURL)
			},
		},
	}
}

func (c *rediscache) Get(key string) ([]byte, error) {
	conn := c.pool.Get()
	defer conn.Close()

	res, err := conn.Do("GET", key)
	if res != nil {
		return redis.Bytes(res, err)
	}
	return nil, err
}

func (c *rediscache) Set(key string, value []byte, ttl int64) error {
	conn := c.pool.Get()
	defer conn.Close()

	if ttl > 0 {
		_, err := conn.Do("SETEX", key, ttl, value)
		return err
	}
	_, err := conn.Do("SET", key, value)
	return err
}

func (c *rediscache) Delete(key string) error {
	conn := c.pool.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", key)
	return err
}

func (c *rediscache) DeleteAll(prefix string) error {
	conn := c.pool.Get()
	defer conn.Close()

	_, err := delScript.Do(conn, prefix+"*")
	return err
}
