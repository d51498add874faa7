// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-directory/internal/platform/constants"
	"github.com/taibuivan/yomira-directory/pkg/uuid"
)

// ErrLockBusy is returned when a lock is still held after every retry.
var ErrLockBusy = errors.New("redis: lock is busy")

const (
	lockRetryDelay = 50 * time.Millisecond
	lockMaxRetries = 40
)

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived mutual exclusion keyed by name.
//
// Locks expire after ttl even if never released, so a crashed holder blocks
// other callers for at most ttl.
type Locker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewLocker builds a [Locker] on top of any go-redis client.
func NewLocker(client redis.Cmdable, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

/*
Acquire takes the lock named key, retrying briefly while someone else holds it.

Parameters:
  - context: stdctx.Context (cancels the wait)
  - key: string (namespaced under the slug lock prefix)

Returns:
  - func(): Release function, safe to call once
  - error: ErrLockBusy, context errors or Redis failures
*/
func (locker *Locker) Acquire(context stdctx.Context, key string) (func(), error) {
	fullKey := constants.RedisPrefixSlugLock + key
	token := uuid.New()

	for attempt := 0; attempt < lockMaxRetries; attempt++ {
		acquired, err := locker.client.SetNX(context, fullKey, token, locker.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: acquire %s: %w", fullKey, err)
		}

		if acquired {
			release := func() {
				// Released with a fresh context so a cancelled request still frees the key.
				releaseCtx, cancel := stdctx.WithTimeout(stdctx.Background(), writeTimeout)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, locker.client, []string{fullKey}, token).Err()
			}
			return release, nil
		}

		select {
		case <-context.Done():
			return nil, context.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return nil, ErrLockBusy
}
