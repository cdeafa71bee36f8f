package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/kevinxiao27/vlist/internal/hub"
	"github.com/kevinxiao27/vlist/internal/wire"
)

// handleWebSocket binds one connection to one list. The client first gets an
// init snapshot, then every change committed after it. Submissions are
// answered with a result envelope; the change for a committed submission is
// broadcast like any other.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	listID := r.URL.Query().Get("list")
	if listID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing list parameter"))
		return
	}

	sub, snap, err := s.svc.Subscribe(r.Context(), listID)
	if err != nil {
		s.writeError(w, errorStatus(err), err)
		return
	}
	defer s.svc.Unsubscribe(sub)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "list", listID, "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("list", listID, "subscriber", sub.ID)
	hello, err := wire.Marshal(wire.TypeInit, snap)
	if err != nil {
		logger.Error("failed to encode snapshot", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return
	}
	logger.Info("client connected", "version", snap.Version)

	out := make(chan []byte, 16)
	done := make(chan struct{})    // reader finished
	stopped := make(chan struct{}) // writer finished
	go func() {
		defer close(stopped)
		s.writeLoop(conn, sub, snap.Version, out, done)
	}()

	send := func(typ string, data any) bool {
		b, err := wire.Marshal(typ, data)
		if err != nil {
			logger.Error("failed to encode envelope", "type", typ, "error", err)
			return false
		}
		select {
		case out <- b:
			return true
		case <-stopped:
			return false
		}
	}
	s.readLoop(r.Context(), conn, listID, send)

	close(done)
	conn.Close()
	<-stopped
	logger.Info("client disconnected")
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, listID string, send func(string, any) bool) {
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return
		}

		res, err := s.submitEnvelope(ctx, listID, b)
		if err != nil {
			if !send(wire.TypeError, wire.Error{Message: err.Error()}) {
				return
			}
			continue
		}
		if !send(wire.TypeResult, res) {
			return
		}
	}
}

func (s *Server) submitEnvelope(ctx context.Context, listID string, b []byte) (wire.Result, error) {
	env, err := wire.Unmarshal(b)
	if err != nil {
		return wire.Result{}, err
	}
	if env.Type != wire.TypeSubmit {
		return wire.Result{}, fmt.Errorf("unexpected message type %q", env.Type)
	}

	var sub wire.Submit
	if err := env.Decode(&sub); err != nil {
		return wire.Result{}, err
	}
	if sub.ListID != "" && sub.ListID != listID {
		return wire.Result{}, fmt.Errorf("connection is bound to list %q", listID)
	}
	return s.svc.Submit(ctx, listID, sub)
}

// writeLoop is the only writer on conn once the init snapshot is out.
// Changes at or below skip are already part of that snapshot.
func (s *Server) writeLoop(conn *websocket.Conn, sub *hub.Subscriber, skip int, out <-chan []byte, done <-chan struct{}) {
	write := func(b []byte) bool {
		return conn.WriteMessage(websocket.TextMessage, b) == nil
	}
	defer conn.Close()

	for {
		select {
		case b := <-out:
			if !write(b) {
				return
			}
		case c, ok := <-sub.C:
			if !ok {
				b, _ := wire.Marshal(wire.TypeError, wire.Error{Message: "subscription dropped, resync required"})
				write(b)
				return
			}
			if c.Version <= skip {
				continue
			}
			b, err := wire.Marshal(wire.TypeChange, c)
			if err != nil || !write(b) {
				return
			}
		case <-done:
			return
		}
	}
}
