package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// client is one websocket connection. gorilla/websocket allows a single
// concurrent writer, so writes go through writeLock.
type client struct {
	conn      *websocket.Conn
	logger    *log.Logger
	writeLock sync.Mutex
}

func (c *client) send(v any) {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	if err := c.conn.WriteJSON(v); err != nil {
		c.logger.Printf("websocket write to %s: %v", c.conn.RemoteAddr(), err)
	}
}

// socketMessage is what clients may send: a move to play.
type socketMessage struct {
	UCI string `json:"uci"`
}

type socketError struct {
	Error string `json:"error"`
}

func (srv *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := srv.lookup(w, r)
	if !ok {
		return
	}
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		srv.logger.Printf("websocket upgrade: %v", err)
		return
	}
	c := &client{conn: conn, logger: srv.logger}
	sess.addClient(c)
	c.send(sess.snapshot())

	go func() {
		defer func() {
			sess.removeClient(c)
			conn.Close()
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg socketMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				c.send(socketError{Error: err.Error()})
				continue
			}
			st, err := sess.playUCI(msg.UCI)
			if err != nil {
				c.send(socketError{Error: err.Error()})
				continue
			}
			sess.broadcast(st)
		}
	}()
}
