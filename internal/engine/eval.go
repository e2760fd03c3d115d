package engine

import "tictactoe/internal/tictactoe"

var pow10 = [...]int{1, 10, 100, 1_000, 10_000, 100_000}

// Evaluate 静态估值，从 me 的视角：正数对 me 有利。
// 每条线（含长度 >= 2 的短对角线）上长度 2..winLength-1 的连子计 10^len，
// 两端都空 ×2，一端空 ×1，两端被堵 0；对手的分乘 1.2。
func Evaluate(s tictactoe.State, me tictactoe.Cell) int {
	return evaluateCells(s.Cells, s.Size, s.WinLength, me)
}

func evaluateCells(cells []tictactoe.Cell, size, winLength int, me tictactoe.Cell) int {
	if winLength <= 0 {
		winLength = size
	}
	own, opp := 0, 0
	for _, line := range tictactoe.Lines(size) {
		n := len(line)
		for i := 0; i < n; {
			c := cells[line[i]]
			if c == tictactoe.Empty {
				i++
				continue
			}
			j := i + 1
			for j < n && cells[line[j]] == c {
				j++
			}
			run := j - i
			if run >= 2 && run < winLength {
				open := 0
				if i > 0 && cells[line[i-1]] == tictactoe.Empty {
					open++
				}
				if j < n && cells[line[j]] == tictactoe.Empty {
					open++
				}
				v := pow10[run] * open
				if c == me {
					own += v
				} else {
					opp += v
				}
			}
			i = j
		}
	}
	return own - opp*6/5
}
