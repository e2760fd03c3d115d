package engine

import "tictactoe/internal/tictactoe"

type ttFlag uint8

const (
	ttExact ttFlag = iota
	ttLower        // 真值 >= Score
	ttUpper        // 真值 <= Score
)

// 棋盘每格 2 bit 打包成 board，5x5 用 50 bit，不会碰撞。
// 同一盘面在不同尺寸、规则、剩余深度、极大/极小层、AI 执子下分数不同，都进 key。
type ttKey struct {
	board      uint64
	size       int8
	winLength  int8
	depth      int8
	maximizing bool
	side       tictactoe.Cell
}

type ttEntry struct {
	Score int
	Flag  ttFlag
}

func (e *Engine) probeTT(key ttKey) (ttEntry, bool) {
	entry, ok := e.tt[key]
	if ok {
		e.cacheHits++
	}
	return entry, ok
}

// 超过上限就整表清空；只影响速度，不影响结果
func (e *Engine) storeTT(key ttKey, score int, flag ttFlag) {
	if len(e.tt) >= e.cacheLimit {
		e.tt = make(map[ttKey]ttEntry, initialTTCap(e.cacheLimit))
	}
	e.tt[key] = ttEntry{Score: score, Flag: flag}
}

func packCells(cells []tictactoe.Cell) uint64 {
	var k uint64
	for i, c := range cells {
		k |= uint64(c) << (2 * uint(i))
	}
	return k
}
