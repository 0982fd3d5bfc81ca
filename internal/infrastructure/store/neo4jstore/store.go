// Package neo4jstore adapts a Neo4j database to the TripleStore contract.
// Statements are persisted as Statement nodes keyed by the full
// subject/predicate/object triple, which makes Insert idempotent and keeps
// enumeration order stable across reads.
package neo4jstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/infrastructure/resilience"
)

type Store struct {
	driver   neo4j.DriverWithContext
	dbName   string
	executor *resilience.Executor
}

type Options struct {
	// ResilienceExecutor, when set, wraps writes with retry and circuit
	// breaker policies. Reads rely on the driver's own transaction retries.
	ResilienceExecutor *resilience.Executor
}

func New(ctx context.Context, uri, username, password, dbName string) (*Store, error) {
	return NewWithOptions(ctx, uri, username, password, dbName, Options{})
}

func NewWithOptions(ctx context.Context, uri, username, password, dbName string, options Options) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	store := &Store{driver: driver, dbName: dbName, executor: options.ResilienceExecutor}
	if err := store.ensureConstraints(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return store, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) ensureConstraints(ctx context.Context) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
CREATE CONSTRAINT statement_identity IF NOT EXISTS
FOR (st:Statement)
REQUIRE (st.subject, st.predicate, st.object, st.kind) IS UNIQUE
`, nil)
		return nil, err
	})
	if err != nil {
		return s.wrapErr("ensure constraints", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, statements []domain.Statement) error {
	if len(statements) == 0 {
		return nil
	}
	return s.runWrite(ctx, "store.insert", func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		return insertTx(ctx, tx, statements)
	})
}

func (s *Store) Query(ctx context.Context, pattern domain.TriplePattern) ([]domain.Statement, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.dbName,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
MATCH (st:Statement)
WHERE ($subject = '' OR st.subject = $subject)
  AND ($predicate = '' OR st.predicate = $predicate)
  AND ($object = '' OR st.object = $object)
RETURN st.subject, st.predicate, st.object, st.kind
ORDER BY st.seq, st.subject, st.predicate, st.object
`, map[string]any{
			"subject":   pattern.Subject,
			"predicate": pattern.Predicate,
			"object":    pattern.Object,
		})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		statements := make([]domain.Statement, 0, len(records))
		for _, record := range records {
			statements = append(statements, domain.Statement{
				Subject:   asString(record.Values[0]),
				Predicate: asString(record.Values[1]),
				Object:    asString(record.Values[2]),
				Kind:      domain.ObjectKind(asString(record.Values[3])),
			})
		}
		return statements, nil
	})
	if err != nil {
		return nil, s.wrapErr("query statements", err)
	}
	return out.([]domain.Statement), nil
}

func (s *Store) DeleteSubject(ctx context.Context, subject string) error {
	return s.runWrite(ctx, "store.delete_subject", func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		_, err := tx.Run(ctx,
			`MATCH (st:Statement {subject: $subject}) DELETE st`,
			map[string]any{"subject": subject})
		return err
	})
}

// Replace retracts and inserts inside a single managed transaction: readers
// never observe the intermediate state, and a failed write rolls back to
// the prior statement set.
func (s *Store) Replace(ctx context.Context, subject string, statements []domain.Statement) error {
	return s.runWrite(ctx, "store.replace", func(ctx context.Context, tx neo4j.ManagedTransaction) error {
		if _, err := tx.Run(ctx,
			`MATCH (st:Statement {subject: $subject}) DELETE st`,
			map[string]any{"subject": subject}); err != nil {
			return err
		}
		return insertTx(ctx, tx, statements)
	})
}

func (s *Store) runWrite(ctx context.Context, operation string, work func(context.Context, neo4j.ManagedTransaction) error) error {
	call := func(ctx context.Context) error {
		session := s.writeSession(ctx)
		defer session.Close(ctx)

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return nil, work(ctx, tx)
		})
		return err
	}

	var err error
	if s.executor != nil {
		err = s.executor.Execute(ctx, operation, call, classifyNeo4jError)
	} else {
		err = call(ctx)
	}
	return s.wrapErr(operation, err)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return s.wrapErr("verify connectivity", err)
	}
	return nil
}

func insertTx(ctx context.Context, tx neo4j.ManagedTransaction, statements []domain.Statement) error {
	rows := make([]map[string]any, 0, len(statements))
	for _, st := range statements {
		rows = append(rows, map[string]any{
			"subject":   st.Subject,
			"predicate": st.Predicate,
			"object":    st.Object,
			"kind":      string(st.Kind),
		})
	}
	_, err := tx.Run(ctx, `
UNWIND $rows AS row
MERGE (st:Statement {subject: row.subject, predicate: row.predicate, object: row.object, kind: row.kind})
ON CREATE SET st.seq = timestamp()
`, map[string]any{"rows": rows})
	return err
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.dbName,
	})
}

// wrapErr marks connectivity-shaped failures as retryable StoreUnavailable
// so callers and the resilience executor can tell them from logic errors.
func (s *Store) wrapErr(operation string, err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) || neo4j.IsRetryable(err) {
		return domain.WrapError(domain.ErrStoreUnavailable, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
