package httpserver

import (
	"fmt"
	"time"

	"tictactoe/internal/engine"
	"tictactoe/internal/match"
	"tictactoe/internal/server/game"
	"tictactoe/internal/tictactoe"
)

// NewGame 请求；size / difficulty 省略时取用户设置
type NewGameRequest struct {
	Size       int    `json:"size"`
	Difficulty string `json:"difficulty"`
	WinLength  int    `json:"win_length"`
}

// Play 请求：人类在 index 落子
type PlayRequest struct {
	GameID string `json:"game_id"`
	Index  int    `json:"index"`
}

// State 请求：前端刷新时用 game_id 来要当前盘面
type StateRequest struct {
	GameID string `json:"game_id"`
}

type NextRoundRequest struct {
	GameID string `json:"game_id"`
}

// RestartRequest 比分清零重开；size / difficulty 省略时不变
type RestartRequest struct {
	GameID     string `json:"game_id"`
	Size       int    `json:"size"`
	Difficulty string `json:"difficulty"`
	WinLength  int    `json:"win_length"`
}

// AiMoveRequest 无状态：前端把 Encode() 的局面传回来，AI 给出一步
type AiMoveRequest struct {
	Position   string `json:"position"`
	Difficulty string `json:"difficulty"`
}

type BoardDTO struct {
	Position    string           `json:"position"`
	Hash        string           `json:"hash"`
	Cells       []int            `json:"cells"`
	Size        int              `json:"size"`
	WinLength   int              `json:"win_length"`
	ToMove      int              `json:"to_move"`
	Status      string           `json:"status"`
	LastMove    int              `json:"last_move"`
	WinningLine []int            `json:"winning_line"`
	Winner      int              `json:"winner"`
	Scores      tictactoe.Scores `json:"scores"`
	LegalMoves  []int            `json:"legal_moves"`
}

type AIMoveDTO struct {
	Index     int    `json:"index"`
	Reason    string `json:"reason"`
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Nodes     int64  `json:"nodes"`
	CacheHits int64  `json:"cache_hits"`
	TimeMs    int64  `json:"time_ms"`
}

// GameStateResponse new_game / play / state / next_round 共用
type GameStateResponse struct {
	GameID      string            `json:"game_id"`
	Difficulty  engine.Difficulty `json:"difficulty"`
	Board       BoardDTO          `json:"board"`
	Match       match.State       `json:"match"`
	AI          *AIMoveDTO        `json:"ai,omitempty"`
	TurnLimitMs int64             `json:"turn_limit_ms"`
}

type AiMoveResponse struct {
	AI    AIMoveDTO `json:"ai"`
	Board BoardDTO  `json:"board"` // AI 落子后的局面
}

type CacheStatus struct {
	Entries int `json:"entries"`
	Limit   int `json:"limit"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func boardToDTO(s tictactoe.State) BoardDTO {
	cells := make([]int, len(s.Cells))
	for i, c := range s.Cells {
		cells[i] = int(c)
	}
	legal := []int{}
	if s.IsPlaying() {
		legal = tictactoe.EmptyCells(s)
	}
	line := s.WinningLine
	if line == nil {
		line = []int{}
	}
	return BoardDTO{
		Position:    s.Encode(),
		Hash:        fmt.Sprintf("%016x", s.Hash()),
		Cells:       cells,
		Size:        s.Size,
		WinLength:   s.WinLength,
		ToMove:      int(s.CurrentPlayer),
		Status:      s.Status.String(),
		LastMove:    s.LastMove,
		WinningLine: line,
		Winner:      int(s.Winner),
		Scores:      s.Scores,
		LegalMoves:  legal,
	}
}

func aiToDTO(r engine.SearchResult) AIMoveDTO {
	return AIMoveDTO{
		Index:     r.Move,
		Reason:    string(r.Reason),
		Score:     r.Score,
		Depth:     r.Depth,
		Nodes:     r.Nodes,
		CacheHits: r.CacheHits,
		TimeMs:    r.TimeUsed.Milliseconds(),
	}
}

func snapshotToResponse(s game.Snapshot, ai *engine.SearchResult) GameStateResponse {
	resp := GameStateResponse{
		GameID:      s.ID,
		Difficulty:  s.Difficulty,
		Board:       boardToDTO(s.Board),
		Match:       s.Match,
		TurnLimitMs: int64(match.TurnLimit(s.Difficulty) / time.Millisecond),
	}
	if ai != nil {
		dto := aiToDTO(*ai)
		resp.AI = &dto
	}
	return resp
}
