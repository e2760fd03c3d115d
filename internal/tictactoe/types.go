package tictactoe

type Cell int8

const (
	Empty   Cell = 0
	Player1 Cell = 1 // X：人类，每一局都先手
	Player2 Cell = 2 // O：AI
)

// Opponent 返回对手；Empty 的对手仍是 Empty
func (c Cell) Opponent() Cell {
	switch c {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return Empty
	}
}

func (c Cell) String() string {
	switch c {
	case Player1:
		return "X"
	case Player2:
		return "O"
	default:
		return "."
	}
}

type Status int8

const (
	StatusPlaying Status = iota
	StatusWon
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusWon:
		return "won"
	case StatusDraw:
		return "draw"
	default:
		return "playing"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Scores 累计胜局数：Player 对应 Player1，AI 对应 Player2
type Scores struct {
	Player int `json:"player"`
	AI     int `json:"ai"`
}

// State 是一局的完整快照。所有转换都返回新值，Cells 不与旧值共享。
type State struct {
	Cells         []Cell
	Size          int
	WinLength     int
	CurrentPlayer Cell
	Scores        Scores
	Status        Status
	LastMove      int   // -1 表示还没有落子
	WinningLine   []int // 只有 StatusWon 时非空
	Winner        Cell
}

// Result 是 CheckWinner 的结果
type Result struct {
	Winner Cell
	Line   []int
}
