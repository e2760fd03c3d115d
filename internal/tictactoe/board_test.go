package tictactoe

import (
	"errors"
	"reflect"
	"testing"
)

func mustInit(t *testing.T, size int, winLength ...int) State {
	t.Helper()
	s, err := InitRound(size, winLength...)
	if err != nil {
		t.Fatalf("InitRound(%d) failed: %v", size, err)
	}
	return s
}

func playAll(t *testing.T, s State, moves ...int) State {
	t.Helper()
	for i, mv := range moves {
		next, err := ApplyMove(s, mv)
		if err != nil {
			t.Fatalf("move #%d (%d) rejected: %v", i, mv, err)
		}
		s = next
	}
	return s
}

func TestInitRound(t *testing.T) {
	for _, size := range []int{3, 4, 5} {
		s := mustInit(t, size)
		if len(s.Cells) != size*size {
			t.Fatalf("size %d: got %d cells", size, len(s.Cells))
		}
		for i, c := range s.Cells {
			if c != Empty {
				t.Fatalf("size %d: cell %d not empty", size, i)
			}
		}
		if s.CurrentPlayer != Player1 || s.Status != StatusPlaying || s.LastMove != NoMove {
			t.Fatalf("size %d: unexpected initial state %+v", size, s)
		}
		if s.WinLength != size {
			t.Fatalf("size %d: default win length %d", size, s.WinLength)
		}
		if s.Scores != (Scores{}) {
			t.Fatalf("size %d: scores not zero: %+v", size, s.Scores)
		}
	}

	t.Run("invalid size", func(t *testing.T) {
		for _, size := range []int{0, 2, 6, 10} {
			if _, err := InitRound(size); !errors.Is(err, ErrInvalidSize) {
				t.Fatalf("size %d: want ErrInvalidSize, got %v", size, err)
			}
		}
	})

	t.Run("win length", func(t *testing.T) {
		if _, err := InitRound(5, 2); !errors.Is(err, ErrInvalidWinLength) {
			t.Fatalf("want ErrInvalidWinLength for 2, got %v", err)
		}
		if _, err := InitRound(4, 5); !errors.Is(err, ErrInvalidWinLength) {
			t.Fatalf("want ErrInvalidWinLength for 5 on 4x4, got %v", err)
		}
		s := mustInit(t, 5, 3)
		if s.WinLength != 3 {
			t.Fatalf("custom win length lost: %d", s.WinLength)
		}
	})
}

func TestNewRoundKeepsScores(t *testing.T) {
	s, err := NewRound(4, Scores{Player: 2, AI: 1})
	if err != nil {
		t.Fatalf("NewRound failed: %v", err)
	}
	if s.Scores != (Scores{Player: 2, AI: 1}) {
		t.Fatalf("scores not carried: %+v", s.Scores)
	}
}

func TestApplyMoveRejects(t *testing.T) {
	s := playAll(t, mustInit(t, 3), 4)
	before := append([]Cell(nil), s.Cells...)

	cases := []struct {
		name  string
		index int
	}{
		{"occupied", 4},
		{"negative", -1},
		{"past end", 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyMove(s, tc.index)
			if !errors.Is(err, ErrInvalidMove) {
				t.Fatalf("want ErrInvalidMove, got %v", err)
			}
			if !reflect.DeepEqual(got.Cells, before) {
				t.Fatalf("cells changed after rejected move: %v", got.Cells)
			}
			if got.CurrentPlayer != Player2 {
				t.Fatalf("turn changed after rejected move")
			}
		})
	}
}

func TestApplyMoveDoesNotMutateInput(t *testing.T) {
	s := mustInit(t, 3)
	next, err := ApplyMove(s, 0)
	if err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	if s.Cells[0] != Empty {
		t.Fatalf("input state mutated")
	}
	changed := 0
	for i := range next.Cells {
		if next.Cells[i] != s.Cells[i] {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("want exactly one changed cell, got %d", changed)
	}
	if next.LastMove != 0 {
		t.Fatalf("last move = %d", next.LastMove)
	}
}

func TestAlternation(t *testing.T) {
	s := mustInit(t, 4)
	want := Player1
	for _, mv := range []int{0, 5, 10, 1, 6, 11} {
		if s.CurrentPlayer != want {
			t.Fatalf("before move %d: current player %v, want %v", mv, s.CurrentPlayer, want)
		}
		next, err := ApplyMove(s, mv)
		if err != nil {
			t.Fatalf("move %d: %v", mv, err)
		}
		if next.Cells[mv] != want {
			t.Fatalf("move %d placed %v", mv, next.Cells[mv])
		}
		s = next
		want = want.Opponent()
	}
}

func TestRowWin3x3(t *testing.T) {
	s := playAll(t, mustInit(t, 3), 0, 3, 1, 4, 2)
	if s.Status != StatusWon || s.Winner != Player1 {
		t.Fatalf("want X win, got status=%v winner=%v", s.Status, s.Winner)
	}
	if !reflect.DeepEqual(s.WinningLine, []int{0, 1, 2}) {
		t.Fatalf("winning line = %v", s.WinningLine)
	}
	if s.Scores.Player != 1 || s.Scores.AI != 0 {
		t.Fatalf("scores = %+v", s.Scores)
	}
	if _, err := ApplyMove(s, 8); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("move after win accepted: %v", err)
	}
}

func TestDraw3x3(t *testing.T) {
	// X O X
	// X O O
	// O X X
	s := playAll(t, mustInit(t, 3), 0, 1, 2, 4, 3, 6, 7, 5, 8)
	if s.Status != StatusDraw {
		t.Fatalf("want draw, got %v", s.Status)
	}
	if s.WinningLine != nil || s.Winner != Empty {
		t.Fatalf("draw carries winner data: %+v", s)
	}
	if s.Scores != (Scores{}) {
		t.Fatalf("draw changed scores: %+v", s.Scores)
	}
	if !IsBoardFull(s) {
		t.Fatalf("board should be full")
	}
}

func TestAIWinScores(t *testing.T) {
	s := playAll(t, mustInit(t, 3), 0, 2, 1, 4, 8, 6)
	if s.Status != StatusWon || s.Winner != Player2 {
		t.Fatalf("want O win, got %v/%v", s.Status, s.Winner)
	}
	if !reflect.DeepEqual(s.WinningLine, []int{2, 4, 6}) {
		t.Fatalf("winning line = %v", s.WinningLine)
	}
	if s.Scores.AI != 1 {
		t.Fatalf("AI score = %d", s.Scores.AI)
	}
}

func TestResetForNewRound(t *testing.T) {
	s := playAll(t, mustInit(t, 5, 3), 0, 5, 1, 6, 2)
	if s.Status != StatusWon {
		t.Fatalf("setup: want won, got %v", s.Status)
	}
	r := ResetForNewRound(s)
	if r.Scores != s.Scores {
		t.Fatalf("scores not preserved: %+v vs %+v", r.Scores, s.Scores)
	}
	if r.Size != 5 || r.WinLength != 3 {
		t.Fatalf("size/winLength not preserved: %d/%d", r.Size, r.WinLength)
	}
	if r.Status != StatusPlaying || r.CurrentPlayer != Player1 || r.LastMove != NoMove {
		t.Fatalf("bad reset state: %+v", r)
	}
	if r.WinningLine != nil || r.Winner != Empty {
		t.Fatalf("winner data survived reset")
	}
	if len(EmptyCells(r)) != 25 {
		t.Fatalf("board not empty after reset")
	}
}

func TestCoords(t *testing.T) {
	for size := MinSize; size <= MaxSize; size++ {
		for idx := 0; idx < size*size; idx++ {
			r, c := IndexToCoords(size, idx)
			if CoordsToIndex(size, r, c) != idx {
				t.Fatalf("size %d idx %d: round trip via (%d,%d) failed", size, idx, r, c)
			}
		}
	}
	s := playAll(t, mustInit(t, 4), 6)
	if s.Cell(1, 2) != Player1 {
		t.Fatalf("Cell(1,2) = %v", s.Cell(1, 2))
	}
	if s.Cell(4, 0) != Empty {
		t.Fatalf("out of range Cell should be Empty")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := playAll(t, mustInit(t, 3), 0, 3, 1, 4, 2)
	c := s.Clone()
	c.Cells[5] = Player2
	c.WinningLine[0] = 7
	if s.Cells[5] != Empty || s.WinningLine[0] != 0 {
		t.Fatalf("clone shares memory with original")
	}
}
