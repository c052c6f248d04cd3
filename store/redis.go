package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"xuezhan/config"
	"xuezhan/logx"
)

const redisKeyPrefix = "xuezhan:game:"

// RedisStore 基于 redis 的会话存储，多实例部署时共享对局。
// TTL 交给 redis 过期机制，不需要清扫协程。
type RedisStore struct {
	cli *redis.Client
	ttl time.Duration
}

func NewRedisStore(conf config.RedisConf, ttl time.Duration) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cli := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Password:     conf.Password,
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		logx.Error("redis 连接错误: %v", err)
		return nil, err
	}
	return &RedisStore{cli: cli, ttl: ttl}, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.cli.Set(ctx, redisKeyPrefix+s.GameID, data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, gameID string) (*Session, error) {
	data, err := r.cli.Get(ctx, redisKeyPrefix+gameID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, gameID string) error {
	return r.cli.Del(ctx, redisKeyPrefix+gameID).Err()
}

func (r *RedisStore) Close() error {
	if err := r.cli.Close(); err != nil {
		logx.Error("redis 关闭出错: %v", err)
		return err
	}
	return nil
}
