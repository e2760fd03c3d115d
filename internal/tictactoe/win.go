package tictactoe

// Rule 描述一个尺寸下的获胜条件：
// Packed  连续 Packed 个同色子即胜；
// Lenient 大于 0 时，长度为 Lenient 的窗口内只有一种颜色且最多一个空位也算胜（空位计入胜利线）。
type Rule struct {
	Packed  int
	Lenient int
}

// RuleFor 返回 size/winLength 对应的规则。
// 3x3 是经典三连；4x4、5x5 在默认 winLength 下为"连四"，5x5 额外允许带一个空位的五格窗口；
// 自定义 winLength < size 时退化为经典 k 连。
func RuleFor(size, winLength int) Rule {
	if winLength <= 0 {
		winLength = size
	}
	switch {
	case size <= 3:
		return Rule{Packed: 3}
	case winLength < size:
		return Rule{Packed: winLength}
	case size >= 5:
		return Rule{Packed: 4, Lenient: 5}
	default:
		return Rule{Packed: 4}
	}
}

func (s State) Rule() Rule {
	return RuleFor(s.Size, s.WinLength)
}

// scanLine 沿一条线逐格扫描。返回获胜方以及胜利线在 line 中的起点和长度；没有则 winner 为 Empty。
func scanLine(cells []Cell, line []int, r Rule) (winner Cell, start, n int) {
	var (
		mark   Cell
		streak int
		counts [3]int
	)
	for i, idx := range line {
		c := cells[idx]
		switch {
		case c == Empty:
			mark, streak = Empty, 0
		case c == mark:
			streak++
		default:
			mark, streak = c, 1
		}
		if streak >= r.Packed {
			return mark, i - r.Packed + 1, r.Packed
		}

		if r.Lenient <= 0 {
			continue
		}
		counts[c]++
		if i >= r.Lenient {
			counts[cells[line[i-r.Lenient]]]--
		}
		if i < r.Lenient-1 || counts[Empty] > 1 {
			continue
		}
		for _, p := range [2]Cell{Player1, Player2} {
			if counts[p]+counts[Empty] == r.Lenient {
				return p, i - r.Lenient + 1, r.Lenient
			}
		}
	}
	return Empty, 0, 0
}

// CheckWinner 按 行 → 列 → "\" → "/" 的顺序扫描整盘，返回第一条胜利线。
func CheckWinner(s State) (Result, bool) {
	if s.Size < MinSize || s.Size > MaxSize || len(s.Cells) != s.Size*s.Size {
		return Result{}, false
	}
	r := s.Rule()
	for _, line := range tableFor(s.Size).lines {
		if len(line) < r.Packed {
			continue
		}
		if w, start, n := scanLine(s.Cells, line, r); w != Empty {
			out := make([]int, n)
			copy(out, line[start:start+n])
			return Result{Winner: w, Line: out}, true
		}
	}
	return Result{}, false
}

// WinAt 只检查经过 idx 的线，不分配内存。搜索里每步落子后调用。
func WinAt(cells []Cell, size int, r Rule, idx int) Cell {
	t := tableFor(size)
	for _, id := range t.through[idx] {
		line := t.lines[id]
		if len(line) < r.Packed {
			continue
		}
		if w, _, _ := scanLine(cells, line, r); w != Empty {
			return w
		}
	}
	return Empty
}
