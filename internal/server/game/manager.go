package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tictactoe/internal/engine"
	"tictactoe/internal/match"
	"tictactoe/internal/tictactoe"
)

var ErrGameNotFound = errors.New("game not found")

// 内存里的对局表：本地跑，一个人玩足够了
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Session
	now   func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		games: make(map[string]*Session),
		now:   time.Now,
	}
}

// NewGame 开一场新比赛。winLength 为 0 时取 size。
func (m *Manager) NewGame(size int, d engine.Difficulty, winLength int) (*Session, error) {
	board, err := tictactoe.InitRound(size, winLength)
	if err != nil {
		return nil, err
	}
	ms, err := match.New(size, d)
	if err != nil {
		return nil, err
	}

	now := m.now()
	g := &Session{
		ID:         uuid.NewString(),
		Board:      board,
		Match:      ms,
		Difficulty: d,
		CreatedAt:  now,
		UpdatedAt:  now,
		now:        m.now,
	}

	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()
	return g, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, id)
	}
	return g, nil
}

func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.games[id]
	delete(m.games, id)
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Sweep 删掉超过 maxIdle 没有动过的对局，返回删除数量。
// 检查会话时不持管理器的锁：AI 搜索期间会话锁可能被长时间占用。
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.RLock()
	games := make(map[string]*Session, len(m.games))
	for id, g := range m.games {
		games[id] = g
	}
	m.mu.RUnlock()

	var idle []string
	for id, g := range games {
		if g.lastActive().Before(cutoff) {
			idle = append(idle, id)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range idle {
		// 期间可能被删掉或换成了新会话
		if g, ok := m.games[id]; ok && g == games[id] {
			delete(m.games, id)
			n++
		}
	}
	return n
}
