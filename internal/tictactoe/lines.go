package tictactoe

import "sync"

// 每种尺寸的所有直线（行、列、主对角线、副对角线），包括长度 >= 2 的短对角线。
// 顺序固定：行 → 列 → "\" → "/"，胜负扫描和估值都依赖这个顺序。
type lineTable struct {
	lines   [][]int
	through [][]int // 格子 → 经过它的直线编号
}

var (
	linesOnce  sync.Once
	lineTables [MaxSize + 1]lineTable
)

func buildLines(n int) lineTable {
	var lines [][]int

	// 行
	for r := 0; r < n; r++ {
		line := make([]int, 0, n)
		for c := 0; c < n; c++ {
			line = append(line, r*n+c)
		}
		lines = append(lines, line)
	}
	// 列
	for c := 0; c < n; c++ {
		line := make([]int, 0, n)
		for r := 0; r < n; r++ {
			line = append(line, r*n+c)
		}
		lines = append(lines, line)
	}

	walk := func(r, c, dr, dc int) []int {
		var line []int
		for r >= 0 && r < n && c >= 0 && c < n {
			line = append(line, r*n+c)
			r += dr
			c += dc
		}
		return line
	}

	// "\"：起点先走第一行从左到右，再走第一列从上到下
	for c := 0; c < n; c++ {
		if line := walk(0, c, 1, 1); len(line) >= 2 {
			lines = append(lines, line)
		}
	}
	for r := 1; r < n; r++ {
		if line := walk(r, 0, 1, 1); len(line) >= 2 {
			lines = append(lines, line)
		}
	}
	// "/"：起点第一行从左到右，再走最后一列从上到下
	for c := 0; c < n; c++ {
		if line := walk(0, c, 1, -1); len(line) >= 2 {
			lines = append(lines, line)
		}
	}
	for r := 1; r < n; r++ {
		if line := walk(r, n-1, 1, -1); len(line) >= 2 {
			lines = append(lines, line)
		}
	}

	through := make([][]int, n*n)
	for id, line := range lines {
		for _, idx := range line {
			through[idx] = append(through[idx], id)
		}
	}
	return lineTable{lines: lines, through: through}
}

func tableFor(size int) *lineTable {
	linesOnce.Do(func() {
		for n := MinSize; n <= MaxSize; n++ {
			lineTables[n] = buildLines(n)
		}
	})
	return &lineTables[size]
}

// Lines 返回 size 尺寸棋盘的所有直线（只读，调用方不要修改）
func Lines(size int) [][]int {
	if size < MinSize || size > MaxSize {
		return nil
	}
	return tableFor(size).lines
}
