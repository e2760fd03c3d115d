package game

import (
	"fmt"
	"sync"
	"time"

	"tictactoe/internal/engine"
	"tictactoe/internal/match"
	"tictactoe/internal/tictactoe"
)

// 人类固定执 Player1，AI 执 Player2
const (
	HumanMark = tictactoe.Player1
	AIMark    = tictactoe.Player2
)

// Mover 给出 AI 的落子，*engine.Engine 满足它
type Mover interface {
	Search(s tictactoe.State, d engine.Difficulty) engine.SearchResult
}

// Session 一场比赛：当前这一局的棋盘 + 三局两胜的比分。字段只在持锁时读写。
type Session struct {
	mu sync.Mutex

	ID         string
	Board      tictactoe.State
	Match      match.State
	Difficulty engine.Difficulty
	CreatedAt  time.Time
	UpdatedAt  time.Time

	now func() time.Time
}

// Snapshot 会话在某一时刻的只读拷贝
type Snapshot struct {
	ID         string
	Board      tictactoe.State
	Match      match.State
	Difficulty engine.Difficulty
	UpdatedAt  time.Time
}

type PlayResult struct {
	Snapshot
	AI *engine.SearchResult // AI 没有走时为 nil
}

func (g *Session) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Session) snapshot() Snapshot {
	m := g.Match
	m.History = append([]match.RoundResult(nil), g.Match.History...)
	return Snapshot{
		ID:         g.ID,
		Board:      g.Board.Clone(),
		Match:      m,
		Difficulty: g.Difficulty,
		UpdatedAt:  g.UpdatedAt,
	}
}

func (g *Session) lastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.UpdatedAt
}

func (g *Session) touch() {
	if g.now != nil {
		g.UpdatedAt = g.now()
	} else {
		g.UpdatedAt = time.Now()
	}
}

// ApplyHuman 人类在 index 落子；一局结束时把结果记进比赛
func (g *Session) ApplyHuman(index int) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Match.IsOver() {
		return g.snapshot(), match.ErrMatchOver
	}
	if g.Board.IsPlaying() && g.Board.CurrentPlayer != HumanMark {
		return g.snapshot(), fmt.Errorf("%w: waiting for the AI", tictactoe.ErrInvalidMove)
	}
	next, err := tictactoe.ApplyMove(g.Board, index)
	if err != nil {
		return g.snapshot(), err
	}
	g.install(next)
	return g.snapshot(), nil
}

// ReplyAI 轮到 AI 时让 ai 走一步；不是 AI 的回合就原样返回
func (g *Session) ReplyAI(ai Mover) (PlayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.Board.IsPlaying() || g.Board.CurrentPlayer != AIMark {
		return PlayResult{Snapshot: g.snapshot()}, nil
	}
	res := ai.Search(g.Board, g.Difficulty)
	if res.Move < 0 {
		return PlayResult{Snapshot: g.snapshot()}, nil
	}
	next, err := tictactoe.ApplyMove(g.Board, res.Move)
	if err != nil {
		return PlayResult{Snapshot: g.snapshot()}, fmt.Errorf("ai move %d: %w", res.Move, err)
	}
	g.install(next)
	return PlayResult{Snapshot: g.snapshot(), AI: &res}, nil
}

// Play 人类落子，然后 AI 应一手
func (g *Session) Play(index int, ai Mover) (PlayResult, error) {
	if _, err := g.ApplyHuman(index); err != nil {
		return PlayResult{Snapshot: g.Snapshot()}, err
	}
	return g.ReplyAI(ai)
}

// NextRound 上一局结束后开下一局，比分保留
func (g *Session) NextRound() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Board.IsPlaying() {
		return g.snapshot(), match.ErrRoundInProgress
	}
	if g.Match.IsOver() {
		return g.snapshot(), match.ErrMatchOver
	}
	g.Board = tictactoe.ResetForNewRound(g.Board)
	g.touch()
	return g.snapshot(), nil
}

func (g *Session) install(next tictactoe.State) {
	g.Board = next
	g.touch()
	if next.IsPlaying() {
		return
	}
	winner := tictactoe.Empty
	if next.Status == tictactoe.StatusWon {
		winner = next.Winner
	}
	if m, err := match.HandleRoundEnd(g.Match, winner); err == nil {
		g.Match = m
	}
}

// RestartOptions 零值字段沿用当前设置
type RestartOptions struct {
	Size       int
	WinLength  int // 换了尺寸又没给时取新尺寸
	Difficulty *engine.Difficulty
}

// Restart 比分清零、重开整场比赛，可以顺便换尺寸和难度
func (g *Session) Restart(opt RestartOptions) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := g.Match
	size, winLength := g.Board.Size, g.Board.WinLength
	if opt.Size != 0 && opt.Size != size {
		size, winLength = opt.Size, 0
	}
	if opt.WinLength != 0 {
		winLength = opt.WinLength
	}
	board, err := tictactoe.InitRound(size, winLength)
	if err != nil {
		return g.snapshot(), err
	}
	if m, err = match.SetBoardSize(m, size); err != nil {
		return g.snapshot(), err
	}
	d := g.Difficulty
	if opt.Difficulty != nil {
		d = *opt.Difficulty
		if m, err = match.SetDifficulty(m, d); err != nil {
			return g.snapshot(), err
		}
	}

	g.Board = board
	g.Match = match.Reset(m)
	g.Difficulty = d
	g.touch()
	return g.snapshot(), nil
}
