package engine

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"tictactoe/internal/tictactoe"
)

const (
	// 一个足够大的值，当成正负无穷
	scoreInf = 1 << 30

	// 终局分，远大于任何静态估值
	WinScore = 10_000_000
)

type Reason string

const (
	ReasonNone     Reason = "none"
	ReasonOnlyMove Reason = "only_move"
	ReasonRandom   Reason = "random"
	ReasonWin      Reason = "win"
	ReasonBlock    Reason = "block"
	ReasonMinimax  Reason = "minimax"
)

// 搜索结果
type SearchResult struct {
	Move      int           // 选中的格子，-1 表示无棋可走
	Score     int           // 极小极大分（AI 视角），只有 minimax 有意义
	Depth     int           // 实际搜索深度
	Nodes     int64         // 节点数
	CacheHits int64         // TT 命中次数
	TimeUsed  time.Duration // 花费时间
	Reason    Reason
}

// SelectMove 返回 AI（s.CurrentPlayer）的落子；没有空格或对局已结束时返回 (-1, false)。
func (e *Engine) SelectMove(s tictactoe.State, d Difficulty) (int, bool) {
	res := e.Search(s, d)
	return res.Move, res.Move >= 0
}

func (e *Engine) Search(s tictactoe.State, d Difficulty) SearchResult {
	start := time.Now()

	e.mu.Lock()
	e.nodes, e.cacheHits = 0, 0
	res := e.search(s, d)
	res.Nodes, res.CacheHits = e.nodes, e.cacheHits
	e.mu.Unlock()

	res.TimeUsed = time.Since(start)
	e.log.Debug("ai move",
		zap.String("difficulty", d.String()),
		zap.String("position", s.Encode()),
		zap.Int("move", res.Move),
		zap.String("reason", string(res.Reason)),
		zap.Int("score", res.Score),
		zap.Int("depth", res.Depth),
		zap.Int64("nodes", res.Nodes),
		zap.Int64("cache_hits", res.CacheHits),
		zap.Duration("took", res.TimeUsed),
	)
	return res
}

func (e *Engine) search(s tictactoe.State, d Difficulty) SearchResult {
	if !s.IsPlaying() {
		return SearchResult{Move: tictactoe.NoMove, Reason: ReasonNone}
	}
	empties := tictactoe.EmptyCells(s)
	switch len(empties) {
	case 0:
		return SearchResult{Move: tictactoe.NoMove, Reason: ReasonNone}
	case 1:
		return SearchResult{Move: empties[0], Reason: ReasonOnlyMove}
	}

	switch d {
	case Easy:
		return e.randomMove(empties)
	case Medium:
		if mv, reason, ok := FindImmediateWinOrBlock(s); ok {
			return SearchResult{Move: mv, Reason: reason}
		}
		if e.rng.Float64() < mediumMinimaxChance {
			return e.minimax(s, d.MaxDepth(s.Size))
		}
		return e.randomMove(empties)
	default:
		if mv, reason, ok := FindImmediateWinOrBlock(s); ok {
			return SearchResult{Move: mv, Reason: reason}
		}
		return e.minimax(s, Hard.MaxDepth(s.Size))
	}
}

func (e *Engine) randomMove(empties []int) SearchResult {
	return SearchResult{Move: empties[e.rng.Intn(len(empties))], Reason: ReasonRandom}
}

// 搜索用的草稿棋盘，落子/悔棋原地修改，打包 key 增量维护
type board struct {
	cells     []tictactoe.Cell
	size      int
	winLength int
	rule      tictactoe.Rule
	empty     int
	key       uint64
}

func newBoard(s tictactoe.State) *board {
	b := &board{
		cells:     append([]tictactoe.Cell(nil), s.Cells...),
		size:      s.Size,
		winLength: s.WinLength,
		rule:      s.Rule(),
	}
	for _, c := range b.cells {
		if c == tictactoe.Empty {
			b.empty++
		}
	}
	b.key = packCells(b.cells)
	return b
}

func (b *board) place(i int, c tictactoe.Cell) {
	b.cells[i] = c
	b.empty--
	b.key |= uint64(c) << (2 * uint(i))
}

func (b *board) undo(i int) {
	b.cells[i] = tictactoe.Empty
	b.empty++
	b.key &^= 3 << (2 * uint(i))
}

// 根节点：AI（执子方）为极大方，按离中心远近的顺序展开，分数严格更大才替换，保证 hard 确定。
func (e *Engine) minimax(s tictactoe.State, maxDepth int) SearchResult {
	b := newBoard(s)
	me := s.CurrentPlayer

	depth := maxDepth
	if depth > b.empty {
		depth = b.empty
	}
	if depth < 1 {
		depth = 1
	}

	best, bestScore := tictactoe.NoMove, -scoreInf
	alpha, beta := -scoreInf, scoreInf
	for _, mv := range centerOrder(b.size) {
		if b.cells[mv] != tictactoe.Empty {
			continue
		}
		b.place(mv, me)
		score := e.alphaBeta(b, mv, depth-1, alpha, beta, false, me)
		b.undo(mv)

		if best < 0 || score > bestScore {
			best, bestScore = mv, score
		}
		if score > alpha {
			alpha = score
		}
	}
	return SearchResult{Move: best, Score: bestScore, Depth: depth, Reason: ReasonMinimax}
}

// 内部递归：标准 alpha-beta，fail-soft。last 是上一手落子位置，用来判断终局。
func (e *Engine) alphaBeta(b *board, last, depth, alpha, beta int, maximizing bool, me tictactoe.Cell) int {
	e.nodes++

	if w := tictactoe.WinAt(b.cells, b.size, b.rule, last); w != tictactoe.Empty {
		if w == me {
			return WinScore + depth
		}
		return -(WinScore + depth)
	}
	if b.empty == 0 {
		return 0
	}
	if depth <= 0 {
		return evaluateCells(b.cells, b.size, b.winLength, me)
	}

	key := ttKey{
		board:      b.key,
		size:       int8(b.size),
		winLength:  int8(b.winLength),
		depth:      int8(depth),
		maximizing: maximizing,
		side:       me,
	}
	if entry, ok := e.probeTT(key); ok {
		switch entry.Flag {
		case ttExact:
			return entry.Score
		case ttLower:
			if entry.Score > alpha {
				alpha = entry.Score
			}
		case ttUpper:
			if entry.Score < beta {
				beta = entry.Score
			}
		}
		if alpha >= beta {
			return entry.Score
		}
	}

	// 这里的窗口就是真正用来搜子节点的窗口，存 TT 时按它定界
	lo, hi := alpha, beta

	mark := me
	if !maximizing {
		mark = me.Opponent()
	}

	var bestScore int
	if maximizing {
		bestScore = -scoreInf
	} else {
		bestScore = scoreInf
	}
	for _, mv := range centerOrder(b.size) {
		if b.cells[mv] != tictactoe.Empty {
			continue
		}
		b.place(mv, mark)
		score := e.alphaBeta(b, mv, depth-1, alpha, beta, !maximizing, me)
		b.undo(mv)

		if maximizing {
			if score > bestScore {
				bestScore = score
			}
			if score > alpha {
				alpha = score
			}
		} else {
			if score < bestScore {
				bestScore = score
			}
			if score < beta {
				beta = score
			}
		}
		if beta <= alpha {
			break
		}
	}

	flag := ttExact
	switch {
	case bestScore <= lo:
		flag = ttUpper
	case bestScore >= hi:
		flag = ttLower
	}
	e.storeTT(key, bestScore, flag)
	return bestScore
}

var (
	orderOnce   sync.Once
	orderTables [tictactoe.MaxSize + 1][]int
)

// centerOrder 所有格子按到中心的平方距离升序，距离相同按下标
func centerOrder(size int) []int {
	orderOnce.Do(func() {
		for n := tictactoe.MinSize; n <= tictactoe.MaxSize; n++ {
			idx := make([]int, n*n)
			for i := range idx {
				idx[i] = i
			}
			dist := func(i int) int {
				r, c := tictactoe.IndexToCoords(n, i)
				dr, dc := 2*r-(n-1), 2*c-(n-1)
				return dr*dr + dc*dc
			}
			sort.SliceStable(idx, func(a, b int) bool {
				return dist(idx[a]) < dist(idx[b])
			})
			orderTables[n] = idx
		}
	})
	return orderTables[size]
}
