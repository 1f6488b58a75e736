package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultLockTTL      = 10 * time.Second
	defaultRetryBase    = 5 * time.Millisecond
	defaultRetryLimit   = 200 * time.Millisecond
	defaultRedisLockPfx = "wallet:lock:"
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу токена.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker блокировки, общие для нескольких экземпляров сервиса. Ключ блокировки живет не дольше ttl,
// поэтому упавший держатель не блокирует юзера навсегда.
type RedisLocker struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	retryBase  time.Duration
	retryLimit time.Duration
	l          *logrus.Entry
}

func NewRedis(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		l:          logrus.StandardLogger().WithField("component", "keylock"),
		client:     client,
		prefix:     defaultRedisLockPfx,
		ttl:        defaultLockTTL,
		retryBase:  defaultRetryBase,
		retryLimit: defaultRetryLimit,
	}
}

// SetTTL устанавливает время жизни ключа блокировки. Оно должно быть больше времени самой долгой операции
// под блокировкой.
func (r *RedisLocker) SetTTL(ttl time.Duration) *RedisLocker {
	r.ttl = ttl
	return r
}

// SetLogger устанавливает логгер, в который пишутся ошибки освобождения блокировки.
func (r *RedisLocker) SetLogger(l *logrus.Logger) *RedisLocker {
	r.l = l.WithField("component", "keylock")
	return r
}

// SetPrefix устанавливает префикс ключей в redis.
func (r *RedisLocker) SetPrefix(prefix string) *RedisLocker {
	r.prefix = prefix
	return r
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := r.prefix + key
	token := uuid.NewString()

	for attempt := 0; ; attempt++ {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr //nolint:wrapcheck
			}
			return nil, fmt.Errorf("[keylock] acquire `%s`: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err() //nolint:wrapcheck
		case <-time.After(backoff(r.retryBase, r.retryLimit, attempt)):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.unlock(ctx, key, redisKey, token) })
	}, nil
}

// unlock освобождает ключ даже если контекст вызывающего уже отменен. ErrNotHeld значит, что ttl истек
// раньше, чем держатель закончил работу, и эксклюзивность могла быть нарушена.
func (r *RedisLocker) unlock(ctx context.Context, key, redisKey, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	err := r.release(releaseCtx, redisKey, token)
	if err == nil {
		return
	}
	entry := r.l.WithError(err).WithField("key", key)
	if errors.Is(err, ErrNotHeld) {
		entry.WithField("ttl", r.ttl.String()).Error("lock expired while held")
		return
	}
	entry.Warn("lock release failed")
}

func (r *RedisLocker) release(ctx context.Context, redisKey, token string) error {
	n, err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Int()
	if err != nil {
		return fmt.Errorf("[keylock] release `%s`: %w", redisKey, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

