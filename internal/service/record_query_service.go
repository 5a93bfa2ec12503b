package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/logger"
	"github.com/Gridfuse/gridfuse/pkg/tracing"
)

// maxBatchConcurrency bounds the field loads running at once in CompileBatch
const maxBatchConcurrency = 8

// RecordQueryService compiles record queries against stored field
// metadata and runs them
type RecordQueryService struct {
	fieldRepo  domain.FieldRepository
	recordRepo domain.RecordRepository
	builder    *QueryBuilder
	logger     logger.Logger
}

// NewRecordQueryService creates a new RecordQueryService. recordRepo may
// be nil when the service only compiles.
func NewRecordQueryService(fieldRepo domain.FieldRepository, recordRepo domain.RecordRepository, builder *QueryBuilder, logger logger.Logger) *RecordQueryService {
	return &RecordQueryService{
		fieldRepo:  fieldRepo,
		recordRepo: recordRepo,
		builder:    builder,
		logger:     logger,
	}
}

// Compile turns a query into a statement for the builder's dialect
func (s *RecordQueryService) Compile(ctx context.Context, q *domain.RecordQuery) (*domain.CompiledStatement, error) {
	if q == nil {
		return nil, fmt.Errorf("record query is required")
	}

	// codecov:ignore:start
	ctx, span := tracing.StartServiceSpan(ctx, "RecordQueryService", "Compile")
	defer span.End()
	tracing.AddAttribute(ctx, "table_id", q.TableID)
	tracing.AddAttribute(ctx, "dialect", string(s.builder.Dialect()))
	// codecov:ignore:end

	start := time.Now()
	stmt, err := s.compile(ctx, q)
	tracing.RecordCompile(ctx, string(s.builder.Dialect()), time.Since(start), countLeaves(q.Filter), err)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	tracing.AddAttribute(ctx, "compile_id", stmt.ID)
	return stmt, nil
}

func (s *RecordQueryService) compile(ctx context.Context, q *domain.RecordQuery) (*domain.CompiledStatement, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	descriptors, err := s.fieldRepo.ListByTable(ctx, q.TableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fields of table %s: %w", q.TableID, err)
	}
	fields := domain.NewFieldMap(descriptors...)

	compiled, err := s.builder.Compile(q.Filter, q.Sort, fields)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"table_id":  q.TableID,
			"dialect":   s.builder.Dialect(),
			"field_ids": q.Filter.FieldIDs(),
		}).Warn(fmt.Sprintf("Failed to compile record query: %v", err))
		return nil, err
	}

	query := s.builder.Select(q.TableID, compiled)
	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		query = query.Offset(uint64(q.Offset))
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build record query: %w", err)
	}

	stmt := &domain.CompiledStatement{
		ID:      uuid.NewString(),
		TableID: q.TableID,
		Dialect: string(s.builder.Dialect()),
		SQL:     sql,
		Args:    args,
	}
	if args == nil {
		stmt.Args = []interface{}{}
	}

	s.logger.WithFields(map[string]interface{}{
		"compile_id": stmt.ID,
		"table_id":   q.TableID,
		"dialect":    stmt.Dialect,
		"args":       len(stmt.Args),
	}).Debug("Compiled record query")

	return stmt, nil
}

// Query compiles a query and returns the matching record ids
func (s *RecordQueryService) Query(ctx context.Context, q *domain.RecordQuery) (*domain.RecordQueryResult, error) {
	if s.recordRepo == nil {
		return nil, fmt.Errorf("record repository is not configured")
	}

	stmt, err := s.Compile(ctx, q)
	if err != nil {
		return nil, err
	}

	ids, err := tracing.TraceMethodWithResult(ctx, "RecordQueryService", "Query", func(ctx context.Context) ([]string, error) {
		return s.recordRepo.ListIDs(ctx, stmt)
	})
	if err != nil {
		s.logger.WithField("compile_id", stmt.ID).Error(fmt.Sprintf("Failed to list records: %v", err))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return &domain.RecordQueryResult{Statement: stmt, IDs: ids}, nil
}

// CompileBatch compiles several queries concurrently. Results keep the
// input order and the first failure cancels the rest.
func (s *RecordQueryService) CompileBatch(ctx context.Context, queries []*domain.RecordQuery) ([]*domain.CompiledStatement, error) {
	results := make([]*domain.CompiledStatement, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stmt, err := s.Compile(gctx, q)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = stmt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// countLeaves counts the leaf conditions of a filter tree
func countLeaves(node *domain.FilterNode) int {
	if node == nil {
		return 0
	}
	if node.Leaf != nil {
		return 1
	}
	n := 0
	if node.Group != nil {
		for _, child := range node.Group.Children {
			n += countLeaves(child)
		}
	}
	return n
}
