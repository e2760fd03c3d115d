package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"tictactoe/internal/server/game"
)

const wsIdlePingInterval = 30 * time.Second

// 客户端 -> 服务端的消息类型
const (
	msgNewGame   = "NewGameRequest"
	msgMakeMove  = "MakeMoveRequest"
	msgNextRound = "NextRoundRequest"
	msgState     = "StateRequest"
	msgRestart   = "RestartRequest"
	msgPing      = "ping"
	msgPong      = "pong"
)

// 服务端 -> 客户端
const (
	msgGameState = "GameStateBroadcast"
	msgAIMove    = "AIMoveBroadcast"
	msgError     = "ErrorResponse"
)

type wsMessage struct {
	Type     string      `json:"type"`
	Contents interface{} `json:"contents,omitempty"`
}

// MakeMoveRequest game_id 省略时用本连接最近一次开的局；index 必填
type MakeMoveRequest struct {
	GameID string `json:"game_id"`
	Index  *int   `json:"index"`
}

var (
	errNoGame  = errors.New("no game on this connection")
	errNoIndex = errors.New("move request without index")
)

type wsConn struct {
	h    *Handler
	conn *websocket.Conn
	log  *zap.Logger

	send   chan []byte
	closed chan struct{} // writer 退出后关闭

	gameID string // 只有 worker 读写
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	c := &wsConn{
		h:      h,
		conn:   conn,
		log:    h.log.With(zap.String("remote", r.RemoteAddr)),
		send:   make(chan []byte, 16),
		closed: make(chan struct{}),
	}
	c.log.Info("ws connected")

	ctx, cancel := context.WithCancel(r.Context())
	requests := make(chan wsMessage, 8)

	go func() {
		defer close(c.closed)
		if err := writeWSWithHeartbeat(conn, c.send); err != nil {
			c.log.Debug("ws write", zap.Error(err))
		}
		conn.Close()
	}()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		defer close(c.send)
		for msg := range requests {
			c.dispatch(ctx, msg)
		}
	}()

	c.readLoop(requests)
	cancel()
	close(requests)
	<-workerDone
	<-c.closed
	c.log.Info("ws disconnected")
}

// readLoop 读到连接断开为止；所有请求交给同一个 worker 顺序处理
func (c *wsConn) readLoop(requests chan<- wsMessage) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = wsMessage{Type: msgError, Contents: "bad json: " + err.Error()}
		}
		select {
		case requests <- msg:
		case <-c.closed:
			return
		}
	}
}

func (c *wsConn) dispatch(ctx context.Context, msg wsMessage) {
	var err error
	switch msg.Type {
	case msgNewGame:
		var req NewGameRequest
		if err = decodeContents(msg.Contents, &req); err == nil {
			err = c.newGame(req)
		}
	case msgMakeMove:
		var req MakeMoveRequest
		if err = decodeContents(msg.Contents, &req); err == nil {
			err = c.makeMove(ctx, req)
		}
	case msgNextRound:
		var req NextRoundRequest
		if err = decodeContents(msg.Contents, &req); err == nil {
			err = c.nextRound(req)
		}
	case msgState:
		var req StateRequest
		if err = decodeContents(msg.Contents, &req); err == nil {
			err = c.state(req)
		}
	case msgRestart:
		var req RestartRequest
		if err = decodeContents(msg.Contents, &req); err == nil {
			err = c.restart(req)
		}
	case msgPing:
		c.emit(msgPong, nil)
	case msgPong:
	case msgError:
		// readLoop 解析失败时塞进来的
		c.emit(msgError, ErrorResponse{Error: fmt.Sprint(msg.Contents)})
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		c.emit(msgError, ErrorResponse{Error: err.Error()})
	}
}

func decodeContents(in interface{}, out interface{}) error {
	if in == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("bad contents: %w", err)
	}
	return nil
}

func (c *wsConn) session(id string) (*game.Session, error) {
	if id == "" {
		id = c.gameID
	}
	if id == "" {
		return nil, errNoGame
	}
	g, err := c.h.games.Get(id)
	if err != nil {
		return nil, err
	}
	c.gameID = id
	return g, nil
}

func (c *wsConn) newGame(req NewGameRequest) error {
	snap, err := c.h.newGame(req)
	if err != nil {
		return err
	}
	c.gameID = snap.ID
	c.emit(msgGameState, snapshotToResponse(snap, nil))
	return nil
}

// makeMove 先推人类这一步，再（可选地停顿后）推 AI 的应手
func (c *wsConn) makeMove(ctx context.Context, req MakeMoveRequest) error {
	if req.Index == nil {
		return errNoIndex
	}
	g, err := c.session(req.GameID)
	if err != nil {
		return err
	}
	snap, err := g.ApplyHuman(*req.Index)
	if err != nil {
		return err
	}
	c.emit(msgGameState, snapshotToResponse(snap, nil))
	if !snap.Board.IsPlaying() || snap.Board.CurrentPlayer != game.AIMark {
		return nil
	}

	if c.h.pacing {
		t := time.NewTimer(c.h.delay(snap.Difficulty))
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil
		}
	}

	res, err := g.ReplyAI(c.h.ai)
	if err != nil {
		return err
	}
	if res.AI != nil {
		c.emit(msgAIMove, snapshotToResponse(res.Snapshot, res.AI))
	}
	return nil
}

func (c *wsConn) nextRound(req NextRoundRequest) error {
	g, err := c.session(req.GameID)
	if err != nil {
		return err
	}
	snap, err := g.NextRound()
	if err != nil {
		return err
	}
	c.emit(msgGameState, snapshotToResponse(snap, nil))
	return nil
}

func (c *wsConn) restart(req RestartRequest) error {
	if _, err := c.session(req.GameID); err != nil {
		return err
	}
	req.GameID = c.gameID
	snap, err := c.h.restart(req)
	if err != nil {
		return err
	}
	c.emit(msgGameState, snapshotToResponse(snap, nil))
	return nil
}

func (c *wsConn) state(req StateRequest) error {
	g, err := c.session(req.GameID)
	if err != nil {
		return err
	}
	c.emit(msgGameState, snapshotToResponse(g.Snapshot(), nil))
	return nil
}

func (c *wsConn) emit(typ string, contents interface{}) {
	data, err := json.Marshal(wsMessage{Type: typ, Contents: contents})
	if err != nil {
		c.log.Error("ws marshal", zap.String("type", typ), zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	case <-c.closed:
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(wsMessage{Type: msgPing})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

// originChecker 没配置白名单时放行所有来源（本地单机使用）
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	hosts := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "*" {
			return func(*http.Request) bool { return true }
		}
		if u, err := url.Parse(a); err == nil && u.Host != "" {
			a = u.Host
		}
		hosts[strings.ToLower(a)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return hosts[strings.ToLower(u.Host)] || strings.EqualFold(u.Host, r.Host)
	}
}
