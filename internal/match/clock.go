package match

import (
	"math/rand"
	"time"

	"lukechampine.com/frand"

	"tictactoe/internal/engine"
)

const minThinkingDelay = 500 * time.Millisecond

// TurnLimit 玩家每步的时限
func TurnLimit(d engine.Difficulty) time.Duration {
	switch d {
	case engine.Easy:
		return 15 * time.Second
	case engine.Hard:
		return 5 * time.Second
	default:
		return 10 * time.Second
	}
}

func maxThinkingDelay(d engine.Difficulty) time.Duration {
	switch d {
	case engine.Easy:
		return 3 * time.Second
	case engine.Hard:
		return time.Second
	default:
		return 2 * time.Second
	}
}

// ThinkingDelay AI 出手前的停顿，在 [500ms, 上限) 内均匀取值：easy 3s，medium 2s，hard 1s。
// rng 为 nil 时用 frand。
func ThinkingDelay(d engine.Difficulty, rng *rand.Rand) time.Duration {
	span := int64(maxThinkingDelay(d) - minThinkingDelay)
	var off int64
	if rng != nil {
		off = rng.Int63n(span)
	} else {
		off = int64(frand.Intn(int(span)))
	}
	return minThinkingDelay + time.Duration(off)
}
