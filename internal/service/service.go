package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/kevinxiao27/vlist/internal/hub"
	"github.com/kevinxiao27/vlist/internal/metrics"
	"github.com/kevinxiao27/vlist/internal/wire"
	"github.com/kevinxiao27/vlist/ol"
	"github.com/kevinxiao27/vlist/vlist"
)

var (
	ErrUnknownList    = errors.New("unknown list")
	ErrUnknownVersion = errors.New("version not in history")
)

// Service owns the authoritative copy of every named list. Lists are created
// empty by Ensure or the first submission to them; reads never create a
// list. Every commit is published to the hub.
type Service struct {
	mu      sync.RWMutex // protects lists
	lists   map[string]*vlist.List[string]
	hub     *hub.Hub
	metrics *metrics.Recorder
	logger  *slog.Logger
}

func New(h *hub.Hub, m *metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		lists:   make(map[string]*vlist.List[string]),
		hub:     h,
		metrics: m,
		logger:  logger,
	}
}

func (s *Service) lookup(listID string) (*vlist.List[string], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[listID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownList, listID)
	}
	return l, nil
}

func (s *Service) list(listID string) *vlist.List[string] {
	if l, err := s.lookup(listID); err == nil {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lists[listID]; ok {
		return l
	}
	l := vlist.New(vlist.WithCommitHook(func(e ol.Entry[string]) {
		s.metrics.RecordVersion(listID, e.Version)
		s.hub.Publish(wire.NewChange(listID, e))
	}))
	s.lists[listID] = l
	s.metrics.RecordVersion(listID, 0)
	s.logger.Info("list created", "list", listID)
	return l
}

// Ensure creates the named lists if they do not exist yet.
func (s *Service) Ensure(listIDs ...string) {
	for _, id := range listIDs {
		s.list(id)
	}
}

func (s *Service) Lists() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.lists))
	for id := range s.lists {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Submit decodes and reconciles one operation. Outcomes other than
// Successful are reported in the Result, not as errors; an error means the
// submission was malformed or ctx was done.
func (s *Service) Submit(ctx context.Context, listID string, sub wire.Submit) (wire.Result, error) {
	if err := ctx.Err(); err != nil {
		return wire.Result{}, err
	}
	op, err := wire.DecodeOp(sub.Op)
	if err != nil {
		return wire.Result{}, fmt.Errorf("submit to %s: %w", listID, err)
	}

	start := time.Now()
	r := s.list(listID).Reconcile(op, sub.BaseVersion)
	s.metrics.RecordSubmission(op.Kind(), r.Outcome, time.Since(start))

	attrs := []any{"list", listID, "op", op.String(), "base", sub.BaseVersion, "version", r.Version, "outcome", r.Outcome}
	switch r.Outcome {
	case vlist.Successful:
		s.logger.DebugContext(ctx, "operation committed", append(attrs, "committed", r.Op.String())...)
	case vlist.DiscardOperation:
		s.logger.InfoContext(ctx, "operation discarded", attrs...)
	default:
		s.logger.WarnContext(ctx, "operation rejected", attrs...)
	}

	return wire.NewResult(listID, r.Version, r.Op, r.Outcome), nil
}

func (s *Service) Snapshot(ctx context.Context, listID string) (wire.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return wire.Snapshot{}, err
	}
	l, err := s.lookup(listID)
	if err != nil {
		return wire.Snapshot{}, err
	}
	return wire.NewSnapshot(listID, l.Snapshot()), nil
}

// Since returns the changes committed to listID after base. The Result
// carries the outcome, Successful, InvalidVersion or OutOfOperationalRange,
// and the list's current version. In the latter two cases the changes are
// nil and the caller has to resync from a snapshot. On error the outcome is
// BadOperation.
func (s *Service) Since(ctx context.Context, listID string, base int) ([]wire.Change, wire.Result, error) {
	failed := wire.Result{ListID: listID, Outcome: vlist.BadOperation}
	if err := ctx.Err(); err != nil {
		return nil, failed, err
	}
	l, err := s.lookup(listID)
	if err != nil {
		return nil, failed, err
	}

	entries, outcome := l.Since(base)
	if outcome != vlist.Successful {
		return nil, wire.Result{ListID: listID, Outcome: outcome, Version: l.Version()}, nil
	}
	res := wire.Result{ListID: listID, Outcome: outcome, Version: base + len(entries)}
	return wire.NewChanges(listID, entries), res, nil
}

// Change returns the single change committed to listID at version.
func (s *Service) Change(ctx context.Context, listID string, version int) (wire.Change, error) {
	if err := ctx.Err(); err != nil {
		return wire.Change{}, err
	}
	l, err := s.lookup(listID)
	if err != nil {
		return wire.Change{}, err
	}
	e, ok := l.Entry(version)
	if !ok {
		return wire.Change{}, fmt.Errorf("%w: %s@%d", ErrUnknownVersion, listID, version)
	}
	return wire.NewChange(listID, e), nil
}

// Subscribe registers for changes to listID and returns the snapshot to start
// from. Changes at or below the snapshot's version may still arrive on the
// subscriber and must be skipped.
func (s *Service) Subscribe(ctx context.Context, listID string) (*hub.Subscriber, wire.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, wire.Snapshot{}, err
	}
	l, err := s.lookup(listID)
	if err != nil {
		return nil, wire.Snapshot{}, err
	}
	sub := s.hub.Subscribe(listID)
	return sub, wire.NewSnapshot(listID, l.Snapshot()), nil
}

func (s *Service) Unsubscribe(sub *hub.Subscriber) {
	s.hub.Unsubscribe(sub)
}
