package tictactoe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPosition = errors.New("invalid position")

// Encode 局面串：各行用"/"隔开，x=Player1，o=Player2，.=空；空格后 1/2 表示轮到谁，
// winLength 与 size 不同时再追加 " w<k>"。例如 "x.o/.x./..o 1"。
func (s State) Encode() string {
	var sb strings.Builder
	for r := 0; r < s.Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < s.Size; c++ {
			sb.WriteByte(cellToChar(s.Cells[r*s.Size+c]))
		}
	}
	sb.WriteByte(' ')
	if s.CurrentPlayer == Player2 {
		sb.WriteByte('2')
	} else {
		sb.WriteByte('1')
	}
	if s.WinLength != 0 && s.WinLength != s.Size {
		sb.WriteString(" w")
		sb.WriteString(strconv.Itoa(s.WinLength))
	}
	return sb.String()
}

func cellToChar(c Cell) byte {
	switch c {
	case Player1:
		return 'x'
	case Player2:
		return 'o'
	default:
		return '.'
	}
}

// DecodePosition 解析 Encode 的输出。已经分出胜负或下满的局面会带上相应的 Status。
func DecodePosition(pos string) (State, error) {
	parts := strings.Fields(pos)
	if len(parts) < 2 || len(parts) > 3 {
		return State{}, fmt.Errorf("%w: want \"<rows> <side> [w<k>]\", got %q", ErrInvalidPosition, pos)
	}
	rows := strings.Split(parts[0], "/")
	size := len(rows)
	if size < MinSize || size > MaxSize {
		return State{}, fmt.Errorf("%w: %d rows", ErrInvalidPosition, size)
	}

	winLength := size
	if len(parts) == 3 {
		w := parts[2]
		if len(w) < 2 || (w[0] != 'w' && w[0] != 'W') {
			return State{}, fmt.Errorf("%w: bad win length field %q", ErrInvalidPosition, w)
		}
		k, err := strconv.Atoi(w[1:])
		if err != nil {
			return State{}, fmt.Errorf("%w: bad win length field %q", ErrInvalidPosition, w)
		}
		winLength = k
	}

	s, err := InitRound(size, winLength)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	for r, row := range rows {
		if len(row) != size {
			return State{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidPosition, r, len(row), size)
		}
		for c := 0; c < size; c++ {
			var cell Cell
			switch row[c] {
			case '.', '-', '_':
				cell = Empty
			case 'x', 'X':
				cell = Player1
			case 'o', 'O':
				cell = Player2
			default:
				return State{}, fmt.Errorf("%w: unexpected %q in row %d", ErrInvalidPosition, row[c], r)
			}
			s.Cells[r*size+c] = cell
		}
	}

	switch parts[1] {
	case "1", "x", "X":
		s.CurrentPlayer = Player1
	case "2", "o", "O":
		s.CurrentPlayer = Player2
	default:
		return State{}, fmt.Errorf("%w: bad side to move %q", ErrInvalidPosition, parts[1])
	}

	if res, ok := CheckWinner(s); ok {
		s.Status = StatusWon
		s.Winner = res.Winner
		s.WinningLine = res.Line
	} else if IsBoardFull(s) {
		s.Status = StatusDraw
	}
	return s, nil
}
