package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"tictactoe/internal/engine"
	"tictactoe/internal/match"
	"tictactoe/internal/tictactoe"
)

type ui struct {
	w   io.Writer
	out *termenv.Output
	in  *bufio.Scanner
}

func (u *ui) printf(format string, args ...any) {
	fmt.Fprintf(u.w, format, args...)
}

func (u *ui) render(s tictactoe.State) {
	win := make(map[int]bool, len(s.WinningLine))
	for _, i := range s.WinningLine {
		win[i] = true
	}
	x := u.out.Color("#E88388")
	o := u.out.Color("#66C2CD")

	u.printf("\n   ")
	for c := 0; c < s.Size; c++ {
		u.printf(" %d", c+1)
	}
	u.printf("\n")
	for r := 0; r < s.Size; r++ {
		u.printf(" %d ", r+1)
		for c := 0; c < s.Size; c++ {
			i := tictactoe.CoordsToIndex(s.Size, r, c)
			cell := s.Cells[i]
			st := u.out.String(cell.String())
			switch cell {
			case tictactoe.Player1:
				st = st.Foreground(x).Bold()
			case tictactoe.Player2:
				st = st.Foreground(o).Bold()
			default:
				st = st.Faint()
			}
			if win[i] {
				st = st.Reverse()
			} else if i == s.LastMove {
				st = st.Underline()
			}
			u.printf(" %s", st)
		}
		u.printf("\n")
	}
	u.printf("\n")
}

// readMove 接受 "行 列"（从 1 开始）或单个下标；q 退出
func (u *ui) readMove(s tictactoe.State) (int, error) {
	for {
		u.printf("your move (row col, q to quit): ")
		if !u.in.Scan() {
			if err := u.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		line := strings.TrimSpace(u.in.Text())
		if line == "q" || line == "quit" {
			return 0, io.EOF
		}
		idx, err := parseMove(line, s.Size)
		if err != nil {
			u.printf("%s\n", u.out.String(err.Error()).Foreground(u.out.Color("1")))
			continue
		}
		if s.Cells[idx] != tictactoe.Empty {
			u.printf("%s\n", u.out.String("cell is taken").Foreground(u.out.Color("1")))
			continue
		}
		return idx, nil
	}
}

func parseMove(line string, size int) (int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
	switch len(fields) {
	case 1:
		i, err := strconv.Atoi(fields[0])
		if err != nil || i < 0 || i >= size*size {
			return 0, fmt.Errorf("index must be 0..%d", size*size-1)
		}
		return i, nil
	case 2:
		r, err1 := strconv.Atoi(fields[0])
		c, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil || r < 1 || r > size || c < 1 || c > size {
			return 0, fmt.Errorf("row and col must be 1..%d", size)
		}
		return tictactoe.CoordsToIndex(size, r-1, c-1), nil
	}
	return 0, fmt.Errorf("want \"row col\"")
}

func (u *ui) playRound(ai *engine.Engine, s tictactoe.State, d engine.Difficulty) (tictactoe.State, error) {
	for s.IsPlaying() {
		u.render(s)
		var idx int
		if s.CurrentPlayer == tictactoe.Player1 {
			var err error
			if idx, err = u.readMove(s); err != nil {
				return s, err
			}
		} else {
			res := ai.Search(s, d)
			idx = res.Move
			r, c := tictactoe.IndexToCoords(s.Size, idx)
			u.printf("AI plays %d %d (%s, %d nodes)\n", r+1, c+1, res.Reason, res.Nodes)
		}
		next, err := tictactoe.ApplyMove(s, idx)
		if err != nil {
			return s, err
		}
		s = next
	}
	u.render(s)
	return s, nil
}

func main() {
	size := flag.Int("size", 3, "board size (3..5)")
	winLength := flag.Int("win", 0, "stones in a row to win (0 = board size)")
	level := flag.String("difficulty", "hard", "easy | medium | hard")
	seed := flag.Int64("seed", 0, "AI random seed (0 = time based)")
	verbose := flag.Bool("v", false, "log engine searches")
	flag.Parse()

	d, err := engine.ParseDifficulty(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := zap.NewNop()
	if *verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	opts := []engine.Option{engine.WithLogger(log)}
	if *seed != 0 {
		opts = append(opts, engine.WithSeed(*seed))
	}
	ai := engine.NewEngine(opts...)

	board, err := tictactoe.InitRound(*size, *winLength)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	m, err := match.New(*size, d)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	u := &ui{w: os.Stdout, out: termenv.NewOutput(os.Stdout), in: bufio.NewScanner(os.Stdin)}
	u.printf("%s  %dx%d, %d in a row, %s\n",
		u.out.String("tic-tac-toe").Bold(), board.Size, board.Size, board.WinLength, d)

	for !m.IsOver() {
		u.printf("\nround %d of %d  you %d : %d AI  hearts %d\n",
			m.CurrentRound, m.MaxRounds, m.Scores.Player, m.Scores.AI, m.Hearts)
		board, err = u.playRound(ai, board, d)
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
		winner := tictactoe.Empty
		if board.Status == tictactoe.StatusWon {
			winner = board.Winner
		}
		switch winner {
		case tictactoe.Player1:
			u.printf("%s\n", u.out.String("you win the round").Foreground(u.out.Color("2")))
		case tictactoe.Player2:
			u.printf("%s\n", u.out.String("AI wins the round").Foreground(u.out.Color("1")))
		default:
			u.printf("draw\n")
		}
		if m, err = match.HandleRoundEnd(m, winner); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		board = tictactoe.ResetForNewRound(board)
	}

	u.printf("\nmatch over: %s (%d : %d)\n", m.Winner(), m.Scores.Player, m.Scores.AI)
}
