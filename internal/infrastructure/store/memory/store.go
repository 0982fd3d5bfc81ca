// Package memory provides an in-process TripleStore used by tests and
// single-node development runs. Semantics mirror the graph-backend adapter:
// Replace is atomic and enumeration order is insertion order.
package memory

import (
	"context"
	"sync"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

type Store struct {
	mu         sync.RWMutex
	statements []domain.Statement
}

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(ctx context.Context, statements []domain.Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range statements {
		if s.containsLocked(st) {
			continue
		}
		s.statements = append(s.statements, st)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, pattern domain.TriplePattern) ([]domain.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Statement
	for _, st := range s.statements {
		if pattern.Matches(st) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Store) DeleteSubject(ctx context.Context, subject string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSubjectLocked(subject)
	return nil
}

// Replace retracts and inserts under one lock acquisition, so no reader
// observes the intermediate state.
func (s *Store) Replace(ctx context.Context, subject string, statements []domain.Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSubjectLocked(subject)
	for _, st := range statements {
		if s.containsLocked(st) {
			continue
		}
		s.statements = append(s.statements, st)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the total statement count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statements)
}

func (s *Store) deleteSubjectLocked(subject string) {
	kept := s.statements[:0]
	for _, st := range s.statements {
		if st.Subject != subject {
			kept = append(kept, st)
		}
	}
	s.statements = kept
}

func (s *Store) containsLocked(needle domain.Statement) bool {
	for _, st := range s.statements {
		if st == needle {
			return true
		}
	}
	return false
}
