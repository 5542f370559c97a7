package server

import (
	"sync"

	"chessbot/board"
	"chessbot/engine"
)

// State is the rendering view of a game: the mailbox from a1 to h8 with FEN
// letters ("" for empty squares) plus everything a client needs to draw it.
type State struct {
	ID       int      `json:"id"`
	FEN      string   `json:"fen"`
	Board    []string `json:"board"`
	Side     string   `json:"side"`
	Status   string   `json:"status"`
	InBook   bool     `json:"in_book"`
	LastMove string   `json:"last_move,omitempty"`
}

// session is one game. mu serialises every access to the game's position.
type session struct {
	id int

	mu   sync.Mutex
	game *engine.Game

	clientsLock sync.RWMutex
	clients     map[*client]struct{}
}

func newSession(id int, game *engine.Game) *session {
	return &session{id: id, game: game, clients: make(map[*client]struct{})}
}

// state must be called with mu held.
func (s *session) state() State {
	p := s.game.Position()
	cells := make([]string, 64)
	for sq := range cells {
		if pc := p.PieceAt(board.Square(sq)); pc != board.NoPiece {
			cells[sq] = pc.String()
		}
	}
	st := State{
		ID:     s.id,
		FEN:    p.ToFEN(),
		Board:  cells,
		Side:   p.SideToMove().String(),
		Status: s.game.Status().String(),
		InBook: s.game.InBook(),
	}
	if moves := s.game.Moves(); len(moves) > 0 {
		st.LastMove = moves[len(moves)-1].String()
	}
	return st
}

// playUCI applies a coordinate move and returns the new state.
func (s *session) playUCI(uci string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.game.PlayUCI(uci); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

func (s *session) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *session) addClient(c *client) {
	s.clientsLock.Lock()
	s.clients[c] = struct{}{}
	s.clientsLock.Unlock()
}

func (s *session) removeClient(c *client) {
	s.clientsLock.Lock()
	delete(s.clients, c)
	s.clientsLock.Unlock()
}

// broadcast pushes st to every connected client. Callers must not hold mu.
func (s *session) broadcast(st State) {
	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	for c := range s.clients {
		c.send(st)
	}
}

func (s *session) closeClients() {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
	}
}
