package redis

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// AsynqOptions returns asynq connection options for the configured address,
// so the warmer queue lives on the same Redis as the result cache
func (c *Config) AsynqOptions() (*asynq.RedisClientOpt, error) {
	opt, err := c.Options()
	if err != nil {
		return nil, err
	}

	return asynqOptions(opt), nil
}

func asynqOptions(opt *redis.Options) *asynq.RedisClientOpt {
	return &asynq.RedisClientOpt{
		Network:      opt.Network,
		Addr:         opt.Addr,
		Username:     opt.Username,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  opt.DialTimeout,
		ReadTimeout:  opt.ReadTimeout,
		WriteTimeout: opt.WriteTimeout,
		PoolSize:     opt.PoolSize,
		TLSConfig:    opt.TLSConfig,
	}
}
