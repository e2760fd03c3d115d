package match

import (
	"errors"
	"fmt"
	"time"

	"tictactoe/internal/engine"
	"tictactoe/internal/tictactoe"
)

const (
	MaxRounds = 3
	MaxHearts = 4

	// 先赢 2 局者拿下整场
	winsNeeded = MaxRounds/2 + 1
)

var (
	ErrMatchOver       = errors.New("match is over")
	ErrRoundInProgress = errors.New("round still in progress")
)

type Status string

const (
	StatusPlaying   Status = "playing"
	StatusPlayerWon Status = "player_won"
	StatusAIWon     Status = "ai_won"
	StatusDraw      Status = "draw"
)

type RoundResult struct {
	Round     int            `json:"round"`
	Winner    tictactoe.Cell `json:"winner"` // Empty 表示平局
	Timestamp time.Time      `json:"timestamp"`
}

// State 一场三局两胜的比赛。和棋盘一样是值类型，转换都返回新值。
type State struct {
	BoardSize        int               `json:"board_size"`
	Difficulty       engine.Difficulty `json:"difficulty"`
	CurrentRound     int               `json:"current_round"`
	MaxRounds        int               `json:"max_rounds"`
	Scores           tictactoe.Scores  `json:"scores"`
	Hearts           int               `json:"hearts"`
	MaxHearts        int               `json:"max_hearts"`
	History          []RoundResult     `json:"history"`
	Status           Status            `json:"status"`
	ConsecutiveDraws int               `json:"consecutive_draws"`
}

func New(size int, d engine.Difficulty) (State, error) {
	if err := validateSize(size); err != nil {
		return State{}, err
	}
	if _, err := d.MarshalText(); err != nil {
		return State{}, err
	}
	return State{
		BoardSize:    size,
		Difficulty:   d,
		CurrentRound: 1,
		MaxRounds:    MaxRounds,
		Hearts:       MaxHearts,
		MaxHearts:    MaxHearts,
		History:      []RoundResult{},
		Status:       StatusPlaying,
	}, nil
}

func validateSize(size int) error {
	if size < tictactoe.MinSize || size > tictactoe.MaxSize {
		return fmt.Errorf("%w: %d (must be 3, 4 or 5)", tictactoe.ErrInvalidSize, size)
	}
	return nil
}

// HandleRoundEnd 记一局结果。winner 为 Player1 / Player2，Empty 表示平局。
// 第一次平局把心补满，之后每次平局扣一颗；有人赢则连续平局清零。
func HandleRoundEnd(s State, winner tictactoe.Cell) (State, error) {
	return handleRoundEnd(s, winner, time.Now())
}

func handleRoundEnd(s State, winner tictactoe.Cell, now time.Time) (State, error) {
	if s.IsOver() {
		return s, ErrMatchOver
	}
	if winner != tictactoe.Empty && winner != tictactoe.Player1 && winner != tictactoe.Player2 {
		return s, fmt.Errorf("invalid round winner %d", winner)
	}

	next := s.clone()
	next.History = append(next.History, RoundResult{
		Round:     s.CurrentRound,
		Winner:    winner,
		Timestamp: now,
	})

	switch winner {
	case tictactoe.Empty:
		next.ConsecutiveDraws++
		if next.ConsecutiveDraws == 1 {
			next.Hearts = next.MaxHearts
		} else if next.Hearts > 0 {
			next.Hearts--
		}
	case tictactoe.Player1:
		next.ConsecutiveDraws = 0
		next.Scores.Player++
	case tictactoe.Player2:
		next.ConsecutiveDraws = 0
		next.Scores.AI++
	}

	next.CurrentRound++

	switch {
	case next.Scores.Player >= winsNeeded:
		next.Status = StatusPlayerWon
	case next.Scores.AI >= winsNeeded:
		next.Status = StatusAIWon
	case next.CurrentRound > next.MaxRounds:
		switch {
		case next.Scores.Player > next.Scores.AI:
			next.Status = StatusPlayerWon
		case next.Scores.AI > next.Scores.Player:
			next.Status = StatusAIWon
		default:
			next.Status = StatusDraw
		}
	}
	return next, nil
}

func SetBoardSize(s State, size int) (State, error) {
	if err := validateSize(size); err != nil {
		return s, err
	}
	next := s.clone()
	next.BoardSize = size
	return next, nil
}

func SetDifficulty(s State, d engine.Difficulty) (State, error) {
	if _, err := d.MarshalText(); err != nil {
		return s, err
	}
	next := s.clone()
	next.Difficulty = d
	return next, nil
}

// Reset 同尺寸同难度重新开一场
func Reset(s State) State {
	next, err := New(s.BoardSize, s.Difficulty)
	if err != nil {
		// 非法的旧状态：退回默认 3x3
		next, _ = New(tictactoe.MinSize, engine.Easy)
	}
	return next
}

func (s State) IsOver() bool {
	return s.Status != StatusPlaying
}

// Winner 返回 "player" / "ai" / "draw"；比赛未结束返回 ""
func (s State) Winner() string {
	switch s.Status {
	case StatusPlayerWon:
		return "player"
	case StatusAIWon:
		return "ai"
	case StatusDraw:
		return "draw"
	}
	return ""
}

func (s State) clone() State {
	out := s
	out.History = append(make([]RoundResult, 0, len(s.History)+1), s.History...)
	return out
}
