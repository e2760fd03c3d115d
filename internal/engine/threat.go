package engine

import "tictactoe/internal/tictactoe"

// FindImmediateWinOrBlock 按下标顺序找一步制胜的空格；没有再找必须堵的空格。
// 执子方是 s.CurrentPlayer。都没有时返回 (-1, ReasonNone, false)。
func FindImmediateWinOrBlock(s tictactoe.State) (int, Reason, bool) {
	if !s.IsPlaying() {
		return tictactoe.NoMove, ReasonNone, false
	}
	cells := append([]tictactoe.Cell(nil), s.Cells...)
	rule := s.Rule()
	me := s.CurrentPlayer

	try := func(mark tictactoe.Cell) int {
		for i, c := range cells {
			if c != tictactoe.Empty {
				continue
			}
			cells[i] = mark
			w := tictactoe.WinAt(cells, s.Size, rule, i)
			cells[i] = tictactoe.Empty
			if w == mark {
				return i
			}
		}
		return tictactoe.NoMove
	}

	if mv := try(me); mv >= 0 {
		return mv, ReasonWin, true
	}
	if mv := try(me.Opponent()); mv >= 0 {
		return mv, ReasonBlock, true
	}
	return tictactoe.NoMove, ReasonNone, false
}
