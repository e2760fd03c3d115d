package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"tictactoe/internal/engine"
	"tictactoe/internal/tictactoe"
)

// TestCase 给前端做对拍：同一局面下 Go 这边判出的胜负、连线和困难 AI 的落子
type TestCase struct {
	Position    string `json:"position"`
	Cells       []int  `json:"cells"`
	Size        int    `json:"size"`
	WinLength   int    `json:"winLength"`
	ToMove      int    `json:"toMove"`
	Status      string `json:"status"`
	Winner      int    `json:"winner"`
	WinningLine []int  `json:"winningLine"`
	Empty       []int  `json:"emptyCells"`
	HardMove    int    `json:"hardMove"` // 对局结束时为 -1
	HardReason  string `json:"hardReason"`
}

func toCase(s tictactoe.State, ai *engine.Engine) TestCase {
	cells := make([]int, len(s.Cells))
	for i, c := range s.Cells {
		cells[i] = int(c)
	}
	tc := TestCase{
		Position:    s.Encode(),
		Cells:       cells,
		Size:        s.Size,
		WinLength:   s.WinLength,
		ToMove:      int(s.CurrentPlayer),
		Status:      s.Status.String(),
		Winner:      int(s.Winner),
		WinningLine: append([]int{}, s.WinningLine...),
		Empty:       tictactoe.EmptyCells(s),
		HardMove:    tictactoe.NoMove,
	}
	if s.IsPlaying() {
		res := ai.Search(s, engine.Hard)
		tc.HardMove, tc.HardReason = res.Move, string(res.Reason)
	}
	return tc
}

func main() {
	numGames := flag.Int("games", 10, "random games per board size")
	out := flag.String("out", "board_test_data.json", "output file")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	rng := rand.New(rand.NewSource(*seed))
	ai := engine.NewEngine(engine.WithRand(rng))
	var testCases []TestCase

	for size := tictactoe.MinSize; size <= tictactoe.MaxSize; size++ {
		for g := 0; g < *numGames; g++ {
			s, err := tictactoe.InitRound(size)
			if err != nil {
				log.Fatal("init", zap.Int("size", size), zap.Error(err))
			}
			for {
				testCases = append(testCases, toCase(s, ai))
				if !s.IsPlaying() {
					break
				}
				empties := tictactoe.EmptyCells(s)
				if s, err = tictactoe.ApplyMove(s, empties[rng.Intn(len(empties))]); err != nil {
					log.Fatal("apply", zap.Error(err))
				}
			}
		}
	}

	data, err := json.MarshalIndent(testCases, "", "  ")
	if err != nil {
		log.Fatal("marshal", zap.Error(err))
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatal("write", zap.String("file", *out), zap.Error(err))
	}
	log.Info("fixtures written",
		zap.String("file", *out),
		zap.Int("cases", len(testCases)),
		zap.Int("games_per_size", *numGames),
		zap.Int64("seed", *seed),
	)
}
