package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Gridfuse/gridfuse/internal/domain"
)

// compileRequest is a record query plus the fields it may reference.
// The query service ignores Fields when metadata comes from the database.
type compileRequest struct {
	domain.RecordQuery
	Fields []*domain.FieldDescriptor `json:"fields,omitempty"`
}

// tableSchema describes a record table and its fields
type tableSchema struct {
	TableID string                    `json:"tableId"`
	Fields  []*domain.FieldDescriptor `json:"fields"`
}

// Validate checks the table id and every field
func (s *tableSchema) Validate() error {
	if s.TableID == "" {
		return fmt.Errorf("tableId is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("table %s has no fields", s.TableID)
	}
	for _, f := range s.Fields {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// decodeFile reads a JSON or YAML document into out. YAML is converted to
// JSON first so that json tags and raw filter values apply unchanged.
func decodeFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", path, err)
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// inlineFieldRepository serves the fields given in a request file
type inlineFieldRepository struct {
	tableID string
	fields  []*domain.FieldDescriptor
}

func (r *inlineFieldRepository) ListByTable(_ context.Context, tableID string) ([]*domain.FieldDescriptor, error) {
	if tableID != r.tableID {
		return nil, nil
	}
	return r.fields, nil
}
