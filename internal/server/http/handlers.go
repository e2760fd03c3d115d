package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tictactoe/internal/engine"
	"tictactoe/internal/match"
	"tictactoe/internal/server/game"
	"tictactoe/internal/settings"
	"tictactoe/internal/tictactoe"
)

// 请求体上限，正常请求远小于这个值
const maxBodyBytes = 1 << 16

type Options struct {
	Logger         *zap.Logger
	Engine         *engine.Engine
	Games          *game.Manager
	Settings       settings.Store
	AIPacing       bool
	AllowedOrigins []string
}

// Handler 持有所有 /api/* 和 /ws 需要的依赖
type Handler struct {
	log      *zap.Logger
	ai       *engine.Engine
	games    *game.Manager
	settings settings.Store

	pacing   bool
	delay    func(engine.Difficulty) time.Duration
	upgrader websocket.Upgrader
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		log:      opts.Logger,
		ai:       opts.Engine,
		games:    opts.Games,
		settings: opts.Settings,
		pacing:   opts.AIPacing,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.ai == nil {
		h.ai = engine.NewEngine(engine.WithLogger(h.log))
	}
	if h.games == nil {
		h.games = game.NewManager()
	}
	if h.settings == nil {
		h.settings = settings.NewMemoryStore()
	}
	h.delay = func(d engine.Difficulty) time.Duration {
		return match.ThinkingDelay(d, nil)
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(opts.AllowedOrigins)}
	return h
}

func (h *Handler) Engine() *engine.Engine {
	return h.ai
}

func (h *Handler) Games() *game.Manager {
	return h.games
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.newGame(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap, nil))
}

// newGame 补全缺省的尺寸 / 难度后建局，HTTP 和 websocket 共用
func (h *Handler) newGame(req NewGameRequest) (game.Snapshot, error) {
	prefs, err := h.settings.Load()
	if err != nil {
		h.log.Warn("load settings failed, using defaults", zap.Error(err))
		prefs = settings.Defaults()
	}
	size := req.Size
	if size == 0 {
		size = prefs.BoardSize()
	}
	d := prefs.Level()
	if req.Difficulty != "" {
		if d, err = engine.ParseDifficulty(req.Difficulty); err != nil {
			return game.Snapshot{}, err
		}
	}
	g, err := h.games.NewGame(size, d, req.WinLength)
	if err != nil {
		return game.Snapshot{}, err
	}
	h.log.Info("new game",
		zap.String("game_id", g.ID),
		zap.Int("size", size),
		zap.Stringer("difficulty", d),
	)
	return g.Snapshot(), nil
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res, err := g.Play(req.Index, h.ai)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(res.Snapshot, res.AI))
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(g.Snapshot(), nil))
}

func (h *Handler) handleNextRound(w http.ResponseWriter, r *http.Request) {
	var req NextRoundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	snap, err := g.NextRound()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap, nil))
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req RestartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.restart(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap, nil))
}

func (h *Handler) restart(req RestartRequest) (game.Snapshot, error) {
	g, err := h.games.Get(req.GameID)
	if err != nil {
		return game.Snapshot{}, err
	}
	opt := game.RestartOptions{Size: req.Size, WinLength: req.WinLength}
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			return game.Snapshot{}, err
		}
		opt.Difficulty = &d
	}
	return g.Restart(opt)
}

func (h *Handler) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.games.Delete(id) {
		h.writeError(w, fmt.Errorf("%w: %q", game.ErrGameNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "game_id": id})
}

func (h *Handler) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CacheStatus{Entries: h.ai.CacheLen(), Limit: h.ai.CacheLimit()})
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := h.ai.CacheLen()
	h.ai.ClearCache()
	h.log.Info("engine cache cleared", zap.Int("entries", n))
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n})
}

func (h *Handler) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pos, err := tictactoe.DecodePosition(req.Position)
	if err != nil {
		h.writeError(w, err)
		return
	}
	d := engine.Hard
	if req.Difficulty != "" {
		if d, err = engine.ParseDifficulty(req.Difficulty); err != nil {
			h.writeError(w, err)
			return
		}
	}

	res := h.ai.Search(pos, d)
	after := pos
	if res.Move >= 0 {
		if after, err = tictactoe.ApplyMove(pos, res.Move); err != nil {
			h.log.Error("engine produced an illegal move", zap.String("position", req.Position), zap.Int("move", res.Move))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, AiMoveResponse{
		AI:    aiToDTO(res),
		Board: boardToDTO(after),
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Load()
	if err != nil {
		h.log.Error("load settings", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	s, err := h.settings.Save(p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json: " + err.Error()})
		return false
	}
	return true
}

// statusFor 把领域错误映射成 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, match.ErrMatchOver), errors.Is(err, match.ErrRoundInProgress):
		return http.StatusConflict
	case errors.Is(err, tictactoe.ErrInvalidMove),
		errors.Is(err, tictactoe.ErrInvalidSize),
		errors.Is(err, tictactoe.ErrInvalidWinLength),
		errors.Is(err, tictactoe.ErrInvalidPosition),
		errors.Is(err, engine.ErrUnknownDifficulty),
		errors.Is(err, settings.ErrInvalidGridSize):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
