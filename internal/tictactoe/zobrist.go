package tictactoe

import "sync"

const maxCells = MaxSize * MaxSize

var (
	zobristOnce sync.Once

	zobristCells [2][maxCells]uint64
	zobristSide  uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		seed := uint64(0x9E3779B97F4A7C15)
		next := func() uint64 {
			seed += 0x9E3779B97F4A7C15
			z := seed
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			return z ^ (z >> 31)
		}
		for side := 0; side < 2; side++ {
			for i := 0; i < maxCells; i++ {
				zobristCells[side][i] = next()
			}
		}
		zobristSide = next()
	})
}

// CellHashKey 单个格子上某方棋子的哈希分量，增量更新用
func CellHashKey(c Cell, idx int) uint64 {
	if c == Empty || idx < 0 || idx >= maxCells {
		return 0
	}
	initZobrist()
	return zobristCells[c-1][idx]
}

// SideHashKey 轮到 Player2 时异或进哈希
func SideHashKey() uint64 {
	initZobrist()
	return zobristSide
}

// Hash 全量计算 (cells, 轮到谁) 的 Zobrist 哈希。尺寸不同的局面可能碰撞，只用于日志和诊断。
func (s State) Hash() uint64 {
	var h uint64
	for i, c := range s.Cells {
		h ^= CellHashKey(c, i)
	}
	if s.CurrentPlayer == Player2 {
		h ^= SideHashKey()
	}
	return h
}
