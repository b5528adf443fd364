package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrLockHeld = errors.New("attempt lock held by another request")

// AttemptLocker serializes check-then-insert on one (quiz, enrollment) pair.
// It is picked once at start-up and never re-probed.
type AttemptLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
	Name() string
}

func attemptLockKey(quizID, enrollmentID uint) string {
	return fmt.Sprintf("quiz:attempt:%d:%d", quizID, enrollmentID)
}

// NewAttemptLocker uses Redis when a client is available and falls back to
// UnavailableAttemptLocker otherwise.
func NewAttemptLocker(rdb *redis.Client, ttl time.Duration) AttemptLocker {
	if rdb == nil {
		return UnavailableAttemptLocker{}
	}
	return &RedisAttemptLocker{Client: rdb, TTL: ttl}
}

// UnavailableAttemptLocker grants every request. Duplicate attempts are then
// stopped only by the unique index on quiz_responses.
type UnavailableAttemptLocker struct{}

func (UnavailableAttemptLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

func (UnavailableAttemptLocker) Name() string { return "unavailable" }

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisAttemptLocker struct {
	Client *redis.Client
	TTL    time.Duration
}

func (l *RedisAttemptLocker) Name() string { return "redis" }

func (l *RedisAttemptLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		// 使用独立 context，请求取消后仍需释放锁
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.Client, []string{key}, token).Err()
	}, nil
}
