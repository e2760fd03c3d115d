package tictactoe

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	positions := []string{
		".../.../... 1",
		"x.o/.x./..o 1",
		"xo../.x../..o./.... 2",
		"x..../.o.../..x../...../..... 2 w3",
	}
	for _, pos := range positions {
		s := mustDecode(t, pos)
		if got := s.Encode(); got != pos {
			t.Fatalf("round trip mismatch: got %q want %q", got, pos)
		}
	}
}

func TestEncodeFromPlay(t *testing.T) {
	s := playAll(t, mustInit(t, 3), 0, 4)
	if got := s.Encode(); got != "x../.o./... 1" {
		t.Fatalf("Encode = %q", got)
	}
	s = mustInit(t, 4, 3)
	if got := s.Encode(); got != "..../..../..../.... 1 w3" {
		t.Fatalf("Encode = %q", got)
	}
}

func TestDecodeStatus(t *testing.T) {
	s := mustDecode(t, "xxx/oo./... 2")
	if s.Status != StatusWon || s.Winner != Player1 || len(s.WinningLine) != 3 {
		t.Fatalf("decoded won position: %+v", s)
	}
	s = mustDecode(t, "xox/xoo/oxx 1")
	if s.Status != StatusDraw {
		t.Fatalf("decoded full board status = %v", s.Status)
	}
	s = mustDecode(t, "X-O/-X-/--O 2")
	if s.Cells[0] != Player1 || s.Cells[2] != Player2 || s.CurrentPlayer != Player2 {
		t.Fatalf("alternate spellings not accepted: %+v", s)
	}
}

func TestDecodeErrors(t *testing.T) {
	bad := []string{
		"",
		"x.o/.x./..o",
		"x.o/.x. 1",
		"x.o/.x./..oo 1",
		"x.o/.x./..z 1",
		"x.o/.x./..o 3",
		"x.o/.x./..o 1 w4",
		"x.o/.x./..o 1 k3",
		"x.o/.x./..o 1 wx",
		"....../....../....../....../....../...... 1",
	}
	for _, pos := range bad {
		if _, err := DecodePosition(pos); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("DecodePosition(%q): want ErrInvalidPosition, got %v", pos, err)
		}
	}
}

func TestHashIncrementalMatchesFull(t *testing.T) {
	s := mustInit(t, 5)
	h := s.Hash()
	for _, mv := range []int{12, 6, 18, 0, 24} {
		mover := s.CurrentPlayer
		next, err := ApplyMove(s, mv)
		if err != nil {
			t.Fatalf("move %d: %v", mv, err)
		}
		h ^= CellHashKey(mover, mv) ^ SideHashKey()
		if h != next.Hash() {
			t.Fatalf("hash mismatch after %d: got=%d want=%d", mv, h, next.Hash())
		}
		s = next
	}

	a := mustDecode(t, "x../.../... 1")
	b := mustDecode(t, "x../.../... 2")
	if a.Hash() == b.Hash() {
		t.Fatalf("side to move not hashed")
	}
}
