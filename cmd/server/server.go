package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kevinxiao27/vlist/internal/service"
	"github.com/kevinxiao27/vlist/internal/wire"
	"github.com/kevinxiao27/vlist/vlist"
)

type Server struct {
	svc      *service.Service
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewServer(svc *service.Service, logger *slog.Logger) *Server {
	return &Server{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes(metricsPath string, metrics http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/lists", s.handleLists).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id}", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id}/ops", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/lists/{id}/ops", s.handleSince).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id}/ops/{version:[0-9]+}", s.handleChange).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)
	r.Handle(metricsPath, metrics)
	return r
}

// statusFor maps an outcome to an HTTP status. Discards are a normal result
// of optimistic concurrency and are reported as 200.
func statusFor(o vlist.Outcome) int {
	switch o {
	case vlist.Successful, vlist.DiscardOperation:
		return http.StatusOK
	case vlist.BadOperation:
		return http.StatusUnprocessableEntity
	case vlist.InvalidVersion:
		return http.StatusConflict
	case vlist.OutOfOperationalRange:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, wire.Error{Message: err.Error()})
}

// errorStatus maps a service error on a read path to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownList), errors.Is(err, service.ErrUnknownVersion):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Lists())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, errorStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["id"]

	var sub wire.Submit
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.svc.Submit(r.Context(), listID, sub)
	if err != nil {
		status := http.StatusBadRequest
		if r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, statusFor(res.Outcome), res)
}

func (s *Server) handleSince(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["id"]
	base, err := strconv.Atoi(r.URL.Query().Get("since"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("since must be an integer version"))
		return
	}

	changes, res, err := s.svc.Since(r.Context(), listID, base)
	if err != nil {
		s.writeError(w, errorStatus(err), err)
		return
	}
	if res.Outcome != vlist.Successful {
		s.writeJSON(w, statusFor(res.Outcome), res)
		return
	}
	s.writeJSON(w, http.StatusOK, changes)
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	version, err := strconv.Atoi(vars["version"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := s.svc.Change(r.Context(), vars["id"], version)
	if err != nil {
		s.writeError(w, errorStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}
