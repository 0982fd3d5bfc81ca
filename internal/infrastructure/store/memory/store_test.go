package memory

import (
	"context"
	"testing"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
)

func seedStatements() []domain.Statement {
	return []domain.Statement{
		{Subject: "a", Predicate: "type", Object: "ClassA", Kind: domain.ObjectIRI},
		{Subject: "a", Predicate: "creator", Object: "alice", Kind: domain.ObjectLiteral},
		{Subject: "b", Predicate: "type", Object: "ClassB", Kind: domain.ObjectIRI},
	}
}

func TestInsertDeduplicatesStatements(t *testing.T) {
	s := New()
	if err := s.Insert(context.Background(), seedStatements()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(context.Background(), seedStatements()); err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("store holds %d statements, want 3", s.Len())
	}
}

func TestQueryMatchesPatternInInsertionOrder(t *testing.T) {
	s := New()
	if err := s.Insert(context.Background(), seedStatements()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Query(context.Background(), domain.TriplePattern{Subject: "a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d statements, want 2", len(got))
	}
	if got[0].Predicate != "type" || got[1].Predicate != "creator" {
		t.Fatalf("enumeration order broken: %v", got)
	}

	all, err := s.Query(context.Background(), domain.TriplePattern{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("wildcard pattern matched %d, want 3", len(all))
	}
}

func TestDeleteSubjectRemovesOnlyThatSubject(t *testing.T) {
	s := New()
	if err := s.Insert(context.Background(), seedStatements()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.DeleteSubject(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := s.Query(context.Background(), domain.TriplePattern{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Subject != "b" {
		t.Fatalf("remaining = %v", remaining)
	}
}

func TestReplaceSwapsSubjectStatements(t *testing.T) {
	s := New()
	if err := s.Insert(context.Background(), seedStatements()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	next := []domain.Statement{
		{Subject: "a", Predicate: "type", Object: "ClassC", Kind: domain.ObjectIRI},
	}
	if err := s.Replace(context.Background(), "a", next); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.Query(context.Background(), domain.TriplePattern{Subject: "a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Object != "ClassC" {
		t.Fatalf("replaced set = %v", got)
	}
	if s.Len() != 2 {
		t.Fatalf("store holds %d statements, want 2", s.Len())
	}
}

func TestOperationsHonorContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Insert(ctx, seedStatements()); err == nil {
		t.Fatalf("insert ignored cancelled context")
	}
	if _, err := s.Query(ctx, domain.TriplePattern{}); err == nil {
		t.Fatalf("query ignored cancelled context")
	}
	if err := s.Replace(ctx, "a", nil); err == nil {
		t.Fatalf("replace ignored cancelled context")
	}
}
