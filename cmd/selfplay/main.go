package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"tictactoe/internal/engine"
	"tictactoe/internal/tictactoe"
)

type player struct {
	Name  string
	Level engine.Difficulty
}

type gameResult struct {
	Winner   int // 0 / 1 表示 players 下标，-1 和棋
	Plies    int
	Opening  string
	Final    string
	AINodes  int64
	Duration time.Duration
}

// randomOpening 用 frand 随机下 n 手（遇到终局提前停）
func randomOpening(s tictactoe.State, n int) (tictactoe.State, error) {
	for i := 0; i < n && s.IsPlaying(); i++ {
		empties := tictactoe.EmptyCells(s)
		next, err := tictactoe.ApplyMove(s, empties[frand.Intn(len(empties))])
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

func playGame(ctx context.Context, players [2]player, xIdx int, size, winLength, opening int, seed int64, log *zap.Logger) (gameResult, error) {
	start := time.Now()
	s, err := tictactoe.InitRound(size, winLength)
	if err != nil {
		return gameResult{}, err
	}
	if s, err = randomOpening(s, opening); err != nil {
		return gameResult{}, err
	}
	res := gameResult{Opening: s.Encode()}

	// 每局独立的引擎，避免 worker 之间抢同一把锁
	engines := [2]*engine.Engine{
		engine.NewEngine(engine.WithSeed(seed), engine.WithLogger(log)),
		engine.NewEngine(engine.WithSeed(seed+1), engine.WithLogger(log)),
	}

	for s.IsPlaying() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		who := xIdx
		if s.CurrentPlayer == tictactoe.Player2 {
			who = 1 - xIdx
		}
		sr := engines[who].Search(s, players[who].Level)
		res.AINodes += sr.Nodes
		if s, err = tictactoe.ApplyMove(s, sr.Move); err != nil {
			return res, fmt.Errorf("%s played %d in %q: %w", players[who].Name, sr.Move, s.Encode(), err)
		}
		res.Plies++
	}

	res.Winner = -1
	if s.Status == tictactoe.StatusWon {
		res.Winner = xIdx
		if s.Winner == tictactoe.Player2 {
			res.Winner = 1 - xIdx
		}
	}
	res.Final = s.Encode()
	res.Duration = time.Since(start)
	return res, nil
}

func main() {
	games := flag.Int("games", 20, "number of games to play")
	size := flag.Int("size", 3, "board size (3..5)")
	winLength := flag.Int("win", 0, "stones in a row to win (0 = board size)")
	a := flag.String("a", "hard", "difficulty of player A")
	b := flag.String("b", "medium", "difficulty of player B")
	opening := flag.Int("opening", 1, "random plies played before the engines take over")
	workers := flag.Int("workers", runtime.NumCPU(), "games played in parallel")
	verbose := flag.Bool("v", false, "log every game")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()
	engineLog := zap.NewNop()
	if *verbose {
		engineLog = log.Named("engine")
	}

	var players [2]player
	for i, v := range []string{*a, *b} {
		d, err := engine.ParseDifficulty(v)
		if err != nil {
			log.Fatal("bad difficulty", zap.String("value", v), zap.Error(err))
		}
		players[i] = player{Name: fmt.Sprintf("%c:%s", 'A'+i, d), Level: d}
	}

	results := make([]gameResult, *games)
	var mu sync.Mutex
	done := 0

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*workers, 1))
	for i := 0; i < *games; i++ {
		i := i
		g.Go(func() error {
			// 双方轮流执先手
			res, err := playGame(ctx, players, i%2, *size, *winLength, *opening, int64(frand.Intn(math.MaxInt32)), engineLog)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = res

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if *verbose {
				log.Info("game finished",
					zap.Int("game", i+1),
					zap.Int("done", n),
					zap.Int("winner", res.Winner),
					zap.Int("plies", res.Plies),
					zap.String("opening", res.Opening),
					zap.String("final", res.Final),
					zap.Duration("took", res.Duration),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("selfplay failed", zap.Error(err))
	}
	elapsed := time.Since(start)

	var wins [2]int
	var asX [2][3]int // [玩家][胜/和/负]，仅统计执 X 的对局
	draws, plies := 0, 0
	var nodes int64
	for i, r := range results {
		x := i % 2
		plies += r.Plies
		nodes += r.AINodes
		switch r.Winner {
		case -1:
			draws++
			asX[x][1]++
		case x:
			wins[x]++
			asX[x][0]++
		default:
			wins[r.Winner]++
			asX[x][2]++
		}
	}

	fmt.Printf("\n%d games on %dx%d in %v (%d workers)\n\n", *games, *size, *size, elapsed.Round(time.Millisecond), *workers)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "player\twins\tdraws\tlosses\tas X (w/d/l)")
	for i, p := range players {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d/%d/%d\n", p.Name, wins[i], draws, wins[1-i], asX[i][0], asX[i][1], asX[i][2])
	}
	tw.Flush()
	if *games > 0 {
		fmt.Printf("\navg plies %.1f, avg nodes/game %d\n", float64(plies)/float64(*games), nodes/int64(*games))
	}
}
