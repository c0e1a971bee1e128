package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// loadTimeout 合并读取不跟随单个请求取消，用独立超时兜住
const loadTimeout = 3 * time.Second

type RedisStore struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
}

var _ Store = (*RedisStore)(nil)

func NewRedis(addr, pass string, db int) *RedisStore {
	return NewRedisFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewRedisFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{RDB: rdb, Prefix: "sess:"}
}

func (s *RedisStore) key(id string) string { return s.Prefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	// 同一页面的并发请求（样式、重定向）合并成一次读取
	// 第一个调用方断开不能连带等待同一 id 的其他请求失败
	ch := s.sf.DoChan(id, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		b, err := s.RDB.Get(fctx, s.key(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		var d Data
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, err
		}
		return &d, nil
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil || res.Val == nil {
		return nil, res.Err
	}
	// 共享结果，返回副本
	d := *res.Val.(*Data)
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, d *Data, ttl time.Duration) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.RDB.Set(ctx, s.key(id), b, ttl).Err()
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.RDB.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.RDB.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.RDB.Close() }
