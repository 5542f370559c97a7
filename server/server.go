// Package server is the rendering and input surface of the bot: a JSON API
// over HTTP for creating games, inspecting them, playing moves and asking the
// engine for replies, plus a websocket feed of game state.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"

	bb "chessbot/bitboard"
	"chessbot/board"
	"chessbot/book"
	"chessbot/engine"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Config wires a Server. NewBook is called once per game since books track
// the line being played; it may be nil.
type Config struct {
	Settings  engine.Settings
	NewBook   func() (book.Book, error)
	AccessLog io.Writer
	Logger    *log.Logger
}

type Server struct {
	router   *mux.Router
	handler  http.Handler
	settings engine.Settings
	newBook  func() (book.Book, error)
	logger   *log.Logger
	upgrader websocket.Upgrader

	sessionsLock sync.RWMutex
	sessions     map[int]*session
	nextID       int
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	accessLog := cfg.AccessLog
	if accessLog == nil {
		accessLog = io.Discard
	}
	srv := &Server{
		router:   mux.NewRouter(),
		settings: cfg.Settings,
		newBook:  cfg.NewBook,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[int]*session),
	}

	r := srv.router
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.HandleFunc("/games", srv.createHandler).Methods(http.MethodPost)
	r.HandleFunc("/games", srv.listHandler).Methods(http.MethodGet)
	r.HandleFunc("/games/{id:[0-9]+}", srv.stateHandler).Methods(http.MethodGet)
	r.HandleFunc("/games/{id:[0-9]+}", srv.deleteHandler).Methods(http.MethodDelete)
	r.HandleFunc("/games/{id:[0-9]+}/targets/{square}", srv.targetsHandler).Methods(http.MethodGet)
	r.HandleFunc("/games/{id:[0-9]+}/moves", srv.moveHandler).Methods(http.MethodPost)
	r.HandleFunc("/games/{id:[0-9]+}/bot", srv.botHandler).Methods(http.MethodPost)
	r.HandleFunc("/games/{id:[0-9]+}/ws", srv.wsHandler)

	srv.handler = handlers.RecoveryHandler(handlers.RecoveryLogger(logger))(
		handlers.LoggingHandler(accessLog, r))
	return srv
}

func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.handler.ServeHTTP(w, r)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// moveStatus maps game errors to HTTP statuses.
func moveStatus(err error) int {
	switch {
	case errors.Is(err, board.ErrInvalidUCI):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrIllegalMove),
		errors.Is(err, board.ErrPromotionRequired),
		errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// lookup resolves the {id} path variable, replying 404 when there is no such game.
func (srv *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	srv.sessionsLock.RLock()
	sess, ok := srv.sessions[id]
	srv.sessionsLock.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no such game"))
		return nil, false
	}
	return sess, true
}

type createRequest struct {
	FEN string `json:"fen"`
}

func (srv *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.FEN == "" {
		req.FEN = board.StartFEN
	}

	var bk book.Book
	if srv.newBook != nil && srv.settings.UseBook {
		var err error
		if bk, err = srv.newBook(); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	game, err := engine.NewGame(req.FEN, srv.settings, bk, srv.logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	srv.sessionsLock.Lock()
	srv.nextID++
	sess := newSession(srv.nextID, game)
	srv.sessions[sess.id] = sess
	srv.sessionsLock.Unlock()

	writeJSON(w, http.StatusCreated, sess.snapshot())
}

func (srv *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	srv.sessionsLock.RLock()
	ids := maps.Keys(srv.sessions)
	srv.sessionsLock.RUnlock()
	slices.Sort(ids)
	writeJSON(w, http.StatusOK, map[string][]int{"games": ids})
}

func (srv *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := srv.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.snapshot())
}

func (srv *Server) deleteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := srv.lookup(w, r)
	if !ok {
		return
	}
	srv.sessionsLock.Lock()
	delete(srv.sessions, sess.id)
	srv.sessionsLock.Unlock()
	sess.closeClients()
	w.WriteHeader(http.StatusNoContent)
}

type targetsResponse struct {
	Square   string   `json:"square"`
	Targets  []string `json:"targets"`
	Bitboard string   `json:"bitboard"`
}

func (srv *Server) targetsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := srv.lookup(w, r)
	if !ok {
		return
	}
	sq, err := bb.ParseSquare(mux.Vars(r)["square"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	targets := sess.game.Position().LegalMovesForSquare(sq)
	sess.mu.Unlock()

	resp := targetsResponse{
		Square:   sq.String(),
		Targets:  []string{},
		Bitboard: "0x" + strconv.FormatUint(uint64(targets), 16),
	}
	for _, t := range targets.Squares() {
		resp.Targets = append(resp.Targets, t.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

type moveRequest struct {
	UCI string `json:"uci"`
}

func (srv *Server) moveHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := srv.lookup(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := sess.playUCI(req.UCI)
	if err != nil {
		writeError(w, moveStatus(err), err)
		return
	}
	sess.broadcast(st)
	writeJSON(w, http.StatusOK, st)
}

func (srv *Server) botHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := srv.lookup(w, r)
	if !ok {
		return
	}
	st, err := srv.playBot(r.Context(), sess)
	if err != nil {
		writeError(w, moveStatus(err), err)
		return
	}
	sess.broadcast(st)
	writeJSON(w, http.StatusOK, st)
}

func (srv *Server) playBot(ctx context.Context, sess *session) (State, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	m, err := sess.game.GenerateBotMove(ctx)
	if err != nil {
		return State{}, err
	}
	if err := sess.game.Play(m); err != nil {
		return State{}, err
	}
	return sess.state(), nil
}
