package domain

import "fmt"

// SortOrder is the direction of a sort clause
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortClause sorts by one field. In a list of clauses the first is the primary key.
type SortClause struct {
	FieldID string    `json:"fieldId"`
	Order   SortOrder `json:"order"`
}

// Validate checks the clause
func (s SortClause) Validate() error {
	if s.FieldID == "" {
		return fmt.Errorf("sort clause must have 'fieldId'")
	}
	if s.Order != SortOrderAsc && s.Order != SortOrderDesc {
		return fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", s.Order)
	}
	return nil
}
