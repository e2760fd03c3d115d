package tictactoe

import (
	"reflect"
	"testing"
)

func mustDecode(t *testing.T, pos string) State {
	t.Helper()
	s, err := DecodePosition(pos)
	if err != nil {
		t.Fatalf("decode %q failed: %v", pos, err)
	}
	return s
}

func TestRuleFor(t *testing.T) {
	cases := []struct {
		size, winLength int
		want            Rule
	}{
		{3, 3, Rule{Packed: 3}},
		{3, 0, Rule{Packed: 3}},
		{4, 4, Rule{Packed: 4}},
		{4, 3, Rule{Packed: 3}},
		{5, 5, Rule{Packed: 4, Lenient: 5}},
		{5, 0, Rule{Packed: 4, Lenient: 5}},
		{5, 4, Rule{Packed: 4}},
		{5, 3, Rule{Packed: 3}},
	}
	for _, tc := range cases {
		if got := RuleFor(tc.size, tc.winLength); got != tc.want {
			t.Errorf("RuleFor(%d,%d) = %+v, want %+v", tc.size, tc.winLength, got, tc.want)
		}
	}
}

func TestLineTable(t *testing.T) {
	want := map[int]int{3: 12, 4: 18, 5: 24}
	for size, n := range want {
		if got := len(Lines(size)); got != n {
			t.Errorf("size %d: %d lines, want %d", size, got, n)
		}
	}
	if Lines(6) != nil {
		t.Errorf("size 6 should have no lines")
	}
	// 第一条 "\" 是主对角线
	l := Lines(3)
	if !reflect.DeepEqual(l[6], []int{0, 4, 8}) {
		t.Errorf("first diagonal = %v", l[6])
	}
}

func TestCheckWinner(t *testing.T) {
	cases := []struct {
		name   string
		pos    string
		winner Cell
		line   []int
	}{
		{"3x3 row", "xxx/oo./... 2", Player1, []int{0, 1, 2}},
		{"3x3 column", "ox./ox./.x. 2", Player1, []int{1, 4, 7}},
		{"3x3 anti-diagonal", "xxo/xo./o.. 1", Player2, []int{2, 4, 6}},
		{"3x3 none", "xo./.x./..o 1", Empty, nil},
		{"4x4 packed", "xxxx/oo../o.../.... 2", Player1, []int{0, 1, 2, 3}},
		{"4x4 gap is not a win", "xx.x/oo../o.../.... 2", Empty, nil},
		{"5x5 packed-4", "xxxx./ooo../...../...../..... 2", Player1, []int{0, 1, 2, 3}},
		{"5x5 packed-4 at row end", ".oooo/xxx../x..../...../..... 1", Player2, []int{1, 2, 3, 4}},
		{"5x5 lenient-5 with gap", "xx.xx/ooo../...../...../o.... 2", Player1, []int{0, 1, 2, 3, 4}},
		{"5x5 lenient column", "o..../o.x../.x.../o..../o.... 1", Player2, []int{0, 5, 10, 15, 20}},
		{"5x5 mixed window", "xxoxx/o..../o..../...../..... 2", Empty, nil},
		{"5x5 two gaps", "x.x.x/oo.../o..../...../..... 2", Empty, nil},
		{"5x5 main diagonal packed", "...../.x.../..x../...x./....x 2", Player1, []int{6, 12, 18, 24}},
		{"5x5 short diagonal", ".x.../..x../...x./....x/..... 2", Player1, []int{1, 7, 13, 19}},
		{"5x5 short anti-diagonal", "...o./..o../.o.../o..../..... 1", Player2, []int{3, 7, 11, 15}},
		{"5x5 custom k=3", "xxx../oo.../...../...../..... 2 w3", Player1, []int{0, 1, 2}},
		{"5x5 k=4 has no lenient window", "xx.xx/oo.../o..../...../..... 2 w4", Empty, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustDecode(t, tc.pos)
			res, ok := CheckWinner(s)
			if ok != (tc.winner != Empty) {
				t.Fatalf("ok = %v, want winner %v (result %+v)", ok, tc.winner, res)
			}
			if !ok {
				return
			}
			if res.Winner != tc.winner || !reflect.DeepEqual(res.Line, tc.line) {
				t.Fatalf("got %v %v, want %v %v", res.Winner, res.Line, tc.winner, tc.line)
			}
		})
	}
}

func TestLenientWinThroughApplyMove(t *testing.T) {
	// X: 0 1 3 4 → 最后一手补上 4，第 2 格留空
	s := playAll(t, mustInit(t, 5), 0, 5, 1, 6, 3, 10, 4)
	if s.Status != StatusWon || s.Winner != Player1 {
		t.Fatalf("want X win, got %v/%v", s.Status, s.Winner)
	}
	if !reflect.DeepEqual(s.WinningLine, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("winning line = %v", s.WinningLine)
	}
	if len(s.WinningLine) != 5 {
		t.Fatalf("lenient line should have 5 cells")
	}
}

func TestWinAtMatchesCheckWinner(t *testing.T) {
	positions := []string{
		"xxxx./ooo../...../...../..... 2",
		"xx.xx/ooo../...../...../o.... 2",
		".x.../..x../...x./....x/..... 2",
		"xo./.x./..o 1",
	}
	for _, pos := range positions {
		s := mustDecode(t, pos)
		res, ok := CheckWinner(s)
		r := s.Rule()
		for idx, c := range s.Cells {
			if c == Empty {
				continue
			}
			w := WinAt(s.Cells, s.Size, r, idx)
			if w != Empty && (!ok || w != res.Winner) {
				t.Fatalf("%s: WinAt(%d) = %v, CheckWinner = %v/%v", pos, idx, w, res.Winner, ok)
			}
		}
		if ok {
			last := res.Line[len(res.Line)-1]
			if WinAt(s.Cells, s.Size, r, last) != res.Winner {
				t.Fatalf("%s: WinAt missed the winning line end %d", pos, last)
			}
		}
	}
}
