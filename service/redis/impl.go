package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/base/metrics"
	"github.com/Protivsporta/NFTMarketplace/domain/keys"
)

const (
	keyAttribute = "key"

	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2

	// retTTLNoExpire is the return value of TTL when the key exists but has
	// no associated expire
	retTTLNoExpire = -1
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = redis.ErrNil
)

// Service provides interface for redis operations
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, keys ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	Incrby(context ctx.Ctx, key string, increment int) (int64, error)
	TTL(context ctx.Ctx, key string) (int64, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	Publish(context ctx.Ctx, channel string, msg []byte) error
}

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

// New redis pool
func New(name string, metrics metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   metrics,
		pools: pools,
	}
}

func (r *redImpl) getConn() redis.Conn {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()
	return r.pools.Src.Get()
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn := r.getConn()
	defer conn.Close()

	reply, err := conn.Do(commandName, args...)
	if err != nil && err != redis.ErrNil {
		context.WithFields(log.Fields{
			"err":     err,
			"command": commandName,
		}).Error("redis command failed")
	}
	return reply, err
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := []string{"func", "get", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err == redis.ErrNil {
		r.met.BumpSum("miss", 1, tags...)
		return nil, ErrNotFound
	} else if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return nil, err
	}
	r.met.BumpSum("hit", 1, tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := []string{"func", "set", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	var err error
	if expire > 0 {
		_, err = r.connDo(context, "SET", key, val, "PX", int64(expire/time.Millisecond))
	} else {
		_, err = r.connDo(context, "SET", key, val)
	}
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
	}
	return err
}

func (r *redImpl) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := []string{"func", "setnx", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	_, err := redis.String(r.connDo(context, "SET", key, val, "PX", int64(expire/time.Millisecond), "NX"))
	if err == redis.ErrNil {
		// key already exists
		return ErrNotFound
	} else if err != nil {
		r.met.BumpSum("err", 1, tags...)
	}
	return err
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	tags := []string{"func", "del", "cluster", r.name, "prefix", keys.GetPrefix(ks[0])}
	defer r.met.BumpTime("time", tags...).End()

	args := make([]interface{}, 0, len(ks))
	for _, k := range ks {
		args = append(args, k)
	}
	cnt, err := redis.Int(r.connDo(context, "DEL", args...))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return 0, err
	}
	return cnt, nil
}

func (r *redImpl) Exists(context ctx.Ctx, key string) (bool, error) {
	tags := []string{"func", "exists", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	res, err := redis.Int(r.connDo(context, "EXISTS", key))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return false, err
	}
	return res == 1, nil
}

func (r *redImpl) Incrby(context ctx.Ctx, key string, increment int) (int64, error) {
	tags := []string{"func", "incrby", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	res, err := redis.Int64(r.connDo(context, "INCRBY", key, increment))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return 0, err
	}
	return res, nil
}

func (r *redImpl) TTL(context ctx.Ctx, key string) (int64, error) {
	tags := []string{"func", "ttl", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	ttl, err := redis.Int64(r.connDo(context, "TTL", key))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return 0, err
	}
	if ttl == retTTLNoKey {
		return 0, ErrNotFound
	}
	if ttl == retTTLNoExpire {
		return 0, nil
	}
	return ttl, nil
}

func (r *redImpl) Expire(context ctx.Ctx, key string, ttl time.Duration) error {
	tags := []string{"func", "expire", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	res, err := redis.Int(r.connDo(context, "EXPIRE", key, int64(ttl/time.Second)))
	if err != nil {
		r.met.BumpSum("err", 1, tags...)
		return err
	}
	if res == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *redImpl) Publish(context ctx.Ctx, channel string, msg []byte) error {
	tags := []string{"func", "publish", "cluster", r.name, "prefix", keys.GetPrefix(channel)}
	defer r.met.BumpTime("time", tags...).End()

	if _, err := r.connDo(context, "PUBLISH", channel, msg); err != nil {
		r.met.BumpSum("err", 1, tags...)
		return err
	}
	return nil
}
