package tictactoe

import (
	"errors"
	"fmt"
)

const (
	MinSize      = 3
	MaxSize      = 5
	MinWinLength = 3
	NoMove       = -1
)

var (
	ErrInvalidSize      = errors.New("invalid board size")
	ErrInvalidWinLength = errors.New("invalid win length")
	ErrInvalidMove      = errors.New("invalid move")
)

// InitRound 开一盘新棋，比分清零。winLength 省略或为 0 时取 size。
func InitRound(size int, winLength ...int) (State, error) {
	return NewRound(size, Scores{}, winLength...)
}

// NewRound 同 InitRound，但沿用给定比分。
func NewRound(size int, scores Scores, winLength ...int) (State, error) {
	if size < MinSize || size > MaxSize {
		return State{}, fmt.Errorf("%w: %d (must be 3, 4 or 5)", ErrInvalidSize, size)
	}
	k := size
	if len(winLength) > 0 && winLength[0] != 0 {
		k = winLength[0]
		if k < MinWinLength || k > size {
			return State{}, fmt.Errorf("%w: %d (must be in [%d,%d])", ErrInvalidWinLength, k, MinWinLength, size)
		}
	}
	return State{
		Cells:         make([]Cell, size*size),
		Size:          size,
		WinLength:     k,
		CurrentPlayer: Player1,
		Scores:        scores,
		Status:        StatusPlaying,
		LastMove:      NoMove,
	}, nil
}

// ApplyMove 让当前玩家在 index 落子。非法时返回原状态和包装过的 ErrInvalidMove。
func ApplyMove(s State, index int) (State, error) {
	if s.Status != StatusPlaying {
		return s, fmt.Errorf("%w: round is %s", ErrInvalidMove, s.Status)
	}
	if index < 0 || index >= len(s.Cells) {
		return s, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidMove, index, len(s.Cells))
	}
	if s.Cells[index] != Empty {
		return s, fmt.Errorf("%w: cell %d is occupied", ErrInvalidMove, index)
	}

	next := s.Clone()
	next.Cells[index] = s.CurrentPlayer
	next.LastMove = index

	if res, ok := CheckWinner(next); ok {
		next.Status = StatusWon
		next.Winner = res.Winner
		next.WinningLine = res.Line
		if res.Winner == Player1 {
			next.Scores.Player++
		} else {
			next.Scores.AI++
		}
		return next, nil
	}
	if IsBoardFull(next) {
		next.Status = StatusDraw
		return next, nil
	}
	next.CurrentPlayer = s.CurrentPlayer.Opponent()
	return next, nil
}

func IsBoardFull(s State) bool {
	for _, c := range s.Cells {
		if c == Empty {
			return false
		}
	}
	return true
}

// ResetForNewRound 清空棋盘，保留比分、尺寸和 winLength。
func ResetForNewRound(s State) State {
	return State{
		Cells:         make([]Cell, s.Size*s.Size),
		Size:          s.Size,
		WinLength:     s.WinLength,
		CurrentPlayer: Player1,
		Scores:        s.Scores,
		Status:        StatusPlaying,
		LastMove:      NoMove,
	}
}

// EmptyCells 按下标升序返回空格
func EmptyCells(s State) []int {
	out := make([]int, 0, len(s.Cells))
	for i, c := range s.Cells {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

func IndexToCoords(size, index int) (row, col int) {
	return index / size, index % size
}

func CoordsToIndex(size, row, col int) int {
	return row*size + col
}

// Cell 返回 (row, col) 上的子；越界返回 Empty
func (s State) Cell(row, col int) Cell {
	if row < 0 || row >= s.Size || col < 0 || col >= s.Size {
		return Empty
	}
	return s.Cells[CoordsToIndex(s.Size, row, col)]
}

// Clone 深拷贝，Cells 和 WinningLine 不与原值共享
func (s State) Clone() State {
	out := s
	out.Cells = append([]Cell(nil), s.Cells...)
	if s.WinningLine != nil {
		out.WinningLine = append([]int(nil), s.WinningLine...)
	}
	return out
}

func (s State) IsPlaying() bool {
	return s.Status == StatusPlaying
}
