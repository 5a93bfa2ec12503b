package domain

import (
	"context"
	"fmt"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_record_repository.go -package mocks github.com/Gridfuse/gridfuse/internal/domain RecordRepository

// MaxQueryLimit caps the page size of a record query
const MaxQueryLimit = 10000

// RecordQuery asks for the ids of the records of one table that match a
// filter, in sort order
type RecordQuery struct {
	TableID string       `json:"tableId" valid:"required"`
	Filter  *FilterNode  `json:"filter,omitempty"`
	Sort    []SortClause `json:"sort,omitempty"`
	Limit   int          `json:"limit,omitempty"`
	Offset  int          `json:"offset,omitempty"`
}

// Validate checks the query shape. Field references are checked at compile time.
func (q *RecordQuery) Validate() error {
	if _, err := govalidator.ValidateStruct(q); err != nil {
		return fmt.Errorf("invalid record query: %w", err)
	}
	if q.Limit < 0 || q.Limit > MaxQueryLimit {
		return fmt.Errorf("invalid record query: limit must be between 0 and %d", MaxQueryLimit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("invalid record query: offset cannot be negative")
	}
	if q.Filter != nil {
		if err := q.Filter.Validate(); err != nil {
			return fmt.Errorf("invalid record query: %w", err)
		}
	}
	for i, s := range q.Sort {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid record query: sort %d: %w", i, err)
		}
	}
	return nil
}

// CompiledStatement is a ready to run statement for one dialect
type CompiledStatement struct {
	ID      string        `json:"id"`
	TableID string        `json:"tableId"`
	Dialect string        `json:"dialect"`
	SQL     string        `json:"sql"`
	Args    []interface{} `json:"args"`
}

// RecordQueryResult is the outcome of running a RecordQuery
type RecordQueryResult struct {
	Statement *CompiledStatement `json:"statement"`
	IDs       []string           `json:"ids"`
}

// RecordRepository runs compiled record statements
type RecordRepository interface {
	// ListIDs runs a statement selecting the record id column and returns the ids in row order
	ListIDs(ctx context.Context, stmt *CompiledStatement) ([]string, error)
}
