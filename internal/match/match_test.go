package match

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"tictactoe/internal/engine"
	"tictactoe/internal/tictactoe"
)

const (
	draw  = tictactoe.Empty
	human = tictactoe.Player1
	ai    = tictactoe.Player2
)

func mustNew(t *testing.T) State {
	t.Helper()
	s, err := New(3, engine.Medium)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func endRounds(t *testing.T, s State, winners ...tictactoe.Cell) State {
	t.Helper()
	for i, w := range winners {
		next, err := HandleRoundEnd(s, w)
		if err != nil {
			t.Fatalf("round #%d (%v): %v", i, w, err)
		}
		s = next
	}
	return s
}

func TestNew(t *testing.T) {
	s := mustNew(t)
	if s.CurrentRound != 1 || s.MaxRounds != 3 || s.Hearts != 4 || s.MaxHearts != 4 {
		t.Fatalf("unexpected initial state %+v", s)
	}
	if s.Status != StatusPlaying || s.IsOver() || s.Winner() != "" {
		t.Fatalf("new match should be playing")
	}
	if _, err := New(6, engine.Easy); !errors.Is(err, tictactoe.ErrInvalidSize) {
		t.Fatalf("want ErrInvalidSize, got %v", err)
	}
	if _, err := New(3, engine.Difficulty(7)); !errors.Is(err, engine.ErrUnknownDifficulty) {
		t.Fatalf("want ErrUnknownDifficulty, got %v", err)
	}
}

func TestBestOfThree(t *testing.T) {
	cases := []struct {
		name    string
		winners []tictactoe.Cell
		status  Status
		winner  string
	}{
		{"player two straight", []tictactoe.Cell{human, human}, StatusPlayerWon, "player"},
		{"ai two of three", []tictactoe.Cell{ai, human, ai}, StatusAIWon, "ai"},
		{"one win and two draws", []tictactoe.Cell{human, draw, draw}, StatusPlayerWon, "player"},
		{"all draws", []tictactoe.Cell{draw, draw, draw}, StatusDraw, "draw"},
		{"one each and a draw", []tictactoe.Cell{ai, draw, human}, StatusDraw, "draw"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := endRounds(t, mustNew(t), tc.winners...)
			if s.Status != tc.status || s.Winner() != tc.winner {
				t.Fatalf("got %s/%q, want %s/%q", s.Status, s.Winner(), tc.status, tc.winner)
			}
			if len(s.History) != len(tc.winners) {
				t.Fatalf("history has %d rounds", len(s.History))
			}
			if _, err := HandleRoundEnd(s, human); !errors.Is(err, ErrMatchOver) {
				t.Fatalf("want ErrMatchOver, got %v", err)
			}
		})
	}
}

func TestMatchNotOverAfterOneRound(t *testing.T) {
	s := endRounds(t, mustNew(t), ai)
	if s.IsOver() || s.CurrentRound != 2 || s.Scores.AI != 1 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestHearts(t *testing.T) {
	s := mustNew(t)
	s.Hearts = 2
	s = endRounds(t, s, draw)
	if s.Hearts != MaxHearts || s.ConsecutiveDraws != 1 {
		t.Fatalf("first draw should refill hearts: %+v", s)
	}
	s = endRounds(t, s, draw)
	if s.Hearts != MaxHearts-1 || s.ConsecutiveDraws != 2 {
		t.Fatalf("second draw should cost a heart: %+v", s)
	}

	s = mustNew(t)
	s = endRounds(t, s, draw, human)
	if s.ConsecutiveDraws != 0 {
		t.Fatalf("a win should reset consecutive draws")
	}

	s = mustNew(t)
	s.MaxRounds = 10
	s = endRounds(t, s, draw, draw, draw, draw, draw, draw, draw)
	if s.Hearts != 0 {
		t.Fatalf("hearts should floor at 0, got %d", s.Hearts)
	}
}

func TestHistoryNotShared(t *testing.T) {
	s := endRounds(t, mustNew(t), human)
	a, _ := HandleRoundEnd(s, ai)
	b, _ := HandleRoundEnd(s, draw)
	if a.History[1].Winner != ai || b.History[1].Winner != draw {
		t.Fatalf("branches share history: %+v / %+v", a.History, b.History)
	}
	if len(s.History) != 1 {
		t.Fatalf("input history mutated")
	}
}

func TestHandleRoundEndRecordsTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, err := handleRoundEnd(mustNew(t), human, now)
	if err != nil {
		t.Fatalf("handleRoundEnd: %v", err)
	}
	if got := s.History[0]; got.Round != 1 || got.Winner != human || !got.Timestamp.Equal(now) {
		t.Fatalf("history entry = %+v", got)
	}
	if _, err := HandleRoundEnd(mustNew(t), tictactoe.Cell(5)); err == nil {
		t.Fatalf("bad winner accepted")
	}
}

func TestSettersAndReset(t *testing.T) {
	s := endRounds(t, mustNew(t), human)
	s, err := SetBoardSize(s, 5)
	if err != nil || s.BoardSize != 5 {
		t.Fatalf("SetBoardSize: %v %+v", err, s)
	}
	if _, err := SetBoardSize(s, 2); !errors.Is(err, tictactoe.ErrInvalidSize) {
		t.Fatalf("want ErrInvalidSize, got %v", err)
	}
	s, err = SetDifficulty(s, engine.Hard)
	if err != nil || s.Difficulty != engine.Hard {
		t.Fatalf("SetDifficulty: %v %+v", err, s)
	}
	r := Reset(s)
	if r.BoardSize != 5 || r.Difficulty != engine.Hard || r.Scores != (tictactoe.Scores{}) || len(r.History) != 0 {
		t.Fatalf("Reset = %+v", r)
	}
}

func TestClock(t *testing.T) {
	limits := map[engine.Difficulty]time.Duration{
		engine.Easy:   15 * time.Second,
		engine.Medium: 10 * time.Second,
		engine.Hard:   5 * time.Second,
	}
	for d, want := range limits {
		if got := TurnLimit(d); got != want {
			t.Errorf("TurnLimit(%v) = %v, want %v", d, got, want)
		}
	}

	rng := rand.New(rand.NewSource(1))
	for _, d := range []engine.Difficulty{engine.Easy, engine.Medium, engine.Hard} {
		for i := 0; i < 50; i++ {
			for _, r := range []*rand.Rand{rng, nil} {
				got := ThinkingDelay(d, r)
				if got < 500*time.Millisecond || got >= maxThinkingDelay(d) {
					t.Fatalf("ThinkingDelay(%v) = %v out of range", d, got)
				}
			}
		}
	}
}
