package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter 挂上 API、/ws 和前端静态文件
func NewRouter(h *Handler, webDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.handlePing)
		r.Post("/new_game", h.handleNewGame)
		r.Post("/play", h.handlePlay)
		r.Post("/state", h.handleState)
		r.Post("/next_round", h.handleNextRound)
		r.Post("/restart", h.handleRestart)
		r.Delete("/game/{id}", h.handleDeleteGame)
		r.Post("/ai_move", h.handleAiMove)
		r.Get("/settings", h.handleGetSettings)
		r.Put("/settings", h.handlePutSettings)
		r.Get("/cache", h.handleCacheStatus)
		r.Delete("/cache", h.handleClearCache)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no such endpoint"})
		})
	})
	r.Get("/ws", h.serveWS)

	registerStaticRoutes(r, webDir)
	return r
}
