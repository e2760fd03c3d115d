package engine

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCacheLimit = 20000

	mediumDepth         = 2
	mediumMinimaxChance = 0.8
)

// Engine 可以被多个会话共享：每次 Search 持锁跑完，TT 跨调用保留。
type Engine struct {
	mu sync.Mutex

	tt         map[ttKey]ttEntry
	cacheLimit int

	rng *rand.Rand
	log *zap.Logger

	nodes     int64
	cacheHits int64
}

type Option func(*Engine)

// WithCacheLimit 设置 TT 条目上限，超过即整表清空。n <= 0 时用默认值。
func WithCacheLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheLimit = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSeed 固定随机源，easy / medium 的随机走法可复现
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cacheLimit: DefaultCacheLimit,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.tt = make(map[ttKey]ttEntry, initialTTCap(e.cacheLimit))
	return e
}

// CacheLen 当前 TT 条目数
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tt)
}

func (e *Engine) CacheLimit() int {
	return e.cacheLimit
}

func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.tt = make(map[ttKey]ttEntry, initialTTCap(e.cacheLimit))
	e.mu.Unlock()
}

func initialTTCap(limit int) int {
	if limit > 1<<12 {
		return 1 << 12
	}
	return limit
}
