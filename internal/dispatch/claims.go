package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Claimer serializes dispatches per (recipient, template) key.
//
// Claim returns ok=false when another holder owns the key. The release func
// is non-nil only when ok is true.
type Claimer interface {
	Claim(ctx context.Context, key string) (release func(), ok bool, err error)
}

// LocalClaims is an in-process Claimer.
type LocalClaims struct {
	held map[string]struct{}
	mu   sync.Mutex
}

func NewLocalClaims() *LocalClaims {
	return &LocalClaims{held: make(map[string]struct{})}
}

func (l *LocalClaims) Claim(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}

// Held reports whether key is currently claimed.
func (l *LocalClaims) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

const defaultClaimPrefix = "outreach:claim:"

// releaseScript deletes the claim only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClaims is a Claimer shared by every process using the same Redis.
// A claim expires after ttl so a crashed holder cannot block a key forever.
type RedisClaims struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisClaims(client redis.UniversalClient, ttl time.Duration) *RedisClaims {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisClaims{client: client, prefix: defaultClaimPrefix, ttl: ttl}
}

func (r *RedisClaims) Claim(ctx context.Context, key string) (func(), bool, error) {
	k := r.prefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrClaim, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, r.client, []string{k}, token).Err()
		})
	}, true, nil
}
