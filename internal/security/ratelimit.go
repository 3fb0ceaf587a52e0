package security

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LonelyIsle/stunting-detector/internal/cache"
)

// Limiter decides whether a client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Name() string
}

/* ---------- in-memory token bucket per IP ---------- */

type rlState struct {
	tokens     int
	lastRefill time.Time
}

type MemoryLimiter struct {
	mu          sync.Mutex
	perWindow   int
	maxBurst    int
	refillEvery time.Duration
	byIP        *lru.Cache[string, *rlState]
	now         func() time.Time
}

// NewMemoryLimiter allows perWindow requests every refillEvery, tracking at
// most maxClients addresses.
func NewMemoryLimiter(perWindow int, refillEvery time.Duration, maxClients int) *MemoryLimiter {
	if perWindow <= 0 {
		perWindow = 60
	}
	if refillEvery <= 0 {
		refillEvery = time.Minute
	}
	if maxClients <= 0 {
		maxClients = 10000
	}
	byIP, _ := lru.New[string, *rlState](maxClients)
	return &MemoryLimiter{
		perWindow:   perWindow,
		maxBurst:    perWindow,
		refillEvery: refillEvery,
		byIP:        byIP,
		now:         time.Now,
	}
}

func (rl *MemoryLimiter) Name() string { return "memory" }

func (rl *MemoryLimiter) Allow(_ context.Context, ip string) (bool, error) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	st, ok := rl.byIP.Get(ip)
	if !ok {
		st = &rlState{tokens: rl.maxBurst, lastRefill: now}
		rl.byIP.Add(ip, st)
	}

	elapsed := now.Sub(st.lastRefill)
	if elapsed >= rl.refillEvery {
		chunks := int(elapsed / rl.refillEvery)
		st.tokens += chunks * rl.perWindow
		if st.tokens > rl.maxBurst {
			st.tokens = rl.maxBurst
		}
		st.lastRefill = st.lastRefill.Add(time.Duration(chunks) * rl.refillEvery)
	}

	if st.tokens <= 0 {
		return false, nil
	}
	st.tokens--
	return true, nil
}

/* ---------- shared fixed window in Valkey ---------- */

type RedisLimiter struct {
	counters  *cache.Client
	perWindow int
	window    time.Duration
	now       func() time.Time
}

func NewRedisLimiter(counters *cache.Client, perWindow int, window time.Duration) *RedisLimiter {
	if perWindow <= 0 {
		perWindow = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{counters: counters, perWindow: perWindow, window: window, now: time.Now}
}

func (rl *RedisLimiter) Name() string { return "valkey" }

func (rl *RedisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	slot := rl.now().UnixNano() / int64(rl.window)
	key := "rl:" + ip + ":" + strconv.FormatInt(slot, 10)
	n, err := rl.counters.IncrWindow(ctx, key, rl.window)
	if err != nil {
		return false, err
	}
	return n <= int64(rl.perWindow), nil
}

func clientIP(r *http.Request) string {
	// first X-Forwarded-For entry wins
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
