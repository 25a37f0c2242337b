// Package editor owns the in-memory process-group document being edited.
//
// A Session holds the current value, applies reconciler operations by
// replacing it, and saves it wholesale. Only the response of a successful
// save replaces the value from the outside; a failed save leaves it as is.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/operion-console/pkg/correlation"
	"github.com/dukex/operion-console/pkg/metrics"
	"github.com/dukex/operion-console/pkg/models"
)

var ErrProcessGroupNotFound = errors.New("process group not found")

// Store loads and saves whole process-group documents.
type Store interface {
	Get(ctx context.Context, id string) (*models.ProcessGroup, error)
	Put(ctx context.Context, id string, group *models.ProcessGroup) (*models.ProcessGroup, error)
}

type Session struct {
	store   Store
	id      string
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	current  *models.ProcessGroup
	revision uint64
	saved    uint64
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// Open loads group id from store. A store returning nil, nil yields
// ErrProcessGroupNotFound.
func Open(ctx context.Context, store Store, id string, opts ...Option) (*Session, error) {
	group, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load process group %s: %w", id, err)
	}

	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrProcessGroupNotFound, id)
	}

	return New(store, group, opts...), nil
}

// New starts a session over an already loaded group.
func New(store Store, group *models.ProcessGroup, opts ...Option) *Session {
	s := &Session{
		store:   store,
		id:      group.ID,
		logger:  slog.Default(),
		current: group.Clone(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Session) ID() string {
	return s.id
}

// Current returns a copy of the current document.
func (s *Session) Current() *models.ProcessGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current.Clone()
}

// Dirty reports whether edits were made since the last successful save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.revision != s.saved
}

// DeleteMessage drops the message and every retrieval expression
// referencing it.
func (s *Session) DeleteMessage(messageID string) {
	s.replace(metrics.OpDeleteMessage, func(group *models.ProcessGroup) *models.ProcessGroup {
		return correlation.DeleteMessage(models.Message{ID: messageID}, group)
	})
}

// ApplyForm validates submitted form data and reconciles it into the
// document. Invalid data leaves the document untouched.
func (s *Session) ApplyForm(form correlation.MessageForm) error {
	err := correlation.ValidateForm(form)
	if err != nil {
		return err
	}

	s.replace(metrics.OpApplyForm, func(group *models.ProcessGroup) *models.ProcessGroup {
		return correlation.FromForm(form, group)
	})

	return nil
}

// Update replaces the document with fn's result. fn receives a copy and
// must not retain it.
func (s *Session) Update(fn func(*models.ProcessGroup) *models.ProcessGroup) {
	s.replace(metrics.OpUpdate, func(group *models.ProcessGroup) *models.ProcessGroup {
		return fn(group.Clone())
	})
}

func (s *Session) replace(operation string, fn func(*models.ProcessGroup) *models.ProcessGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = fn(s.current)
	s.revision++

	s.metrics.ObserveReconcile(operation)
}

// Save sends the whole document and, on success, replaces the current value
// with the stored one, overwriting edits made while the save ran.
func (s *Session) Save(ctx context.Context) (*models.ProcessGroup, error) {
	s.mu.Lock()
	snapshot := s.current.Clone()
	s.mu.Unlock()

	start := time.Now()
	saved, err := s.store.Put(ctx, s.id, snapshot)
	s.metrics.ObserveSave(err, time.Since(start))

	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save process group", "process_group_id", s.id, "error", err)

		return nil, fmt.Errorf("failed to save process group %s: %w", s.id, err)
	}

	if saved == nil {
		saved = snapshot
	}

	s.mu.Lock()
	s.current = saved.Clone()
	s.saved = s.revision
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "process group saved", "process_group_id", s.id)

	return saved, nil
}

// SaveAsync runs Save on its own goroutine and calls done with the result.
// Saves are not cancelled by later edits or saves; whichever response lands
// last becomes the current value.
func (s *Session) SaveAsync(ctx context.Context, done func(*models.ProcessGroup, error)) {
	go func() {
		saved, err := s.Save(ctx)
		if done != nil {
			done(saved, err)
		}
	}()
}
