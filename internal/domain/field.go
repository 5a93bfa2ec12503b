package domain

import (
	"context"
	"fmt"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_field_repository.go -package mocks github.com/Gridfuse/gridfuse/internal/domain FieldRepository

// CellValueType is the semantic type of the values a field holds
type CellValueType string

const (
	CellValueTypeString   CellValueType = "string"
	CellValueTypeNumber   CellValueType = "number"
	CellValueTypeBoolean  CellValueType = "boolean"
	CellValueTypeDateTime CellValueType = "dateTime"
)

// Validate checks if the cell value type is valid
func (t CellValueType) Validate() error {
	switch t {
	case CellValueTypeString, CellValueTypeNumber, CellValueTypeBoolean, CellValueTypeDateTime:
		return nil
	}
	return fmt.Errorf("invalid cell value type: %s", t)
}

// DbFieldType is the storage type of the underlying column
type DbFieldType string

const (
	DbFieldTypeText     DbFieldType = "TEXT"
	DbFieldTypeInteger  DbFieldType = "INTEGER"
	DbFieldTypeReal     DbFieldType = "REAL"
	DbFieldTypeBoolean  DbFieldType = "BOOLEAN"
	DbFieldTypeDateTime DbFieldType = "DATETIME"
	DbFieldTypeJSON     DbFieldType = "JSON"
)

// Validate checks if the db field type is valid
func (t DbFieldType) Validate() error {
	switch t {
	case DbFieldTypeText, DbFieldTypeInteger, DbFieldTypeReal, DbFieldTypeBoolean, DbFieldTypeDateTime, DbFieldTypeJSON:
		return nil
	}
	return fmt.Errorf("invalid db field type: %s", t)
}

// FieldType is the user-facing kind of a field
type FieldType string

const (
	FieldTypeSingleLineText   FieldType = "singleLineText"
	FieldTypeLongText         FieldType = "longText"
	FieldTypeNumber           FieldType = "number"
	FieldTypeRating           FieldType = "rating"
	FieldTypeCheckbox         FieldType = "checkbox"
	FieldTypeDate             FieldType = "date"
	FieldTypeCreatedTime      FieldType = "createdTime"
	FieldTypeLastModifiedTime FieldType = "lastModifiedTime"
	FieldTypeSingleSelect     FieldType = "singleSelect"
	FieldTypeMultipleSelect   FieldType = "multipleSelect"
	FieldTypeLink             FieldType = "link"
	FieldTypeFormula          FieldType = "formula"
	FieldTypeRollup           FieldType = "rollup"
	FieldTypeAutoNumber       FieldType = "autoNumber"
)

// TimeFormatting controls whether a date field displays a time component
type TimeFormatting string

const (
	TimeFormattingNone TimeFormatting = "None"
	TimeFormatting24HM TimeFormatting = "HH:mm"
	TimeFormattingHMS  TimeFormatting = "HH:mm:ss"
)

// DatetimeFormatting holds the display preferences of a date field
type DatetimeFormatting struct {
	Date     string         `json:"date"`
	Time     TimeFormatting `json:"time"`
	TimeZone string         `json:"timeZone"`
}

// FieldOptions holds the type-specific configuration of a field
type FieldOptions struct {
	Formatting *DatetimeFormatting `json:"formatting,omitempty"`
}

// FieldDescriptor is the immutable metadata of one column that the
// compiler needs to produce SQL for it
type FieldDescriptor struct {
	ID                  string        `json:"id" valid:"required"`
	Name                string        `json:"name"`
	Type                FieldType     `json:"type"`
	CellValueType       CellValueType `json:"cellValueType" valid:"required"`
	DbFieldType         DbFieldType   `json:"dbFieldType" valid:"required"`
	DbFieldName         string        `json:"dbFieldName" valid:"required"`
	IsMultipleCellValue bool          `json:"isMultipleCellValue"`
	Options             FieldOptions  `json:"options"`
}

// Validate performs validation on the descriptor fields
func (f *FieldDescriptor) Validate() error {
	if _, err := govalidator.ValidateStruct(f); err != nil {
		return fmt.Errorf("invalid field %s: %w", f.ID, err)
	}
	if err := f.CellValueType.Validate(); err != nil {
		return err
	}
	if err := f.DbFieldType.Validate(); err != nil {
		return err
	}
	if f.Options.Formatting != nil && f.Options.Formatting.TimeZone != "" {
		if !IsValidTimezone(f.Options.Formatting.TimeZone) {
			return fmt.Errorf("invalid field %s: unknown timezone %s", f.ID, f.Options.Formatting.TimeZone)
		}
	}
	return nil
}

// HasTime returns true when the field's display format includes a time of day
func (f *FieldDescriptor) HasTime() bool {
	if f.Options.Formatting == nil {
		return false
	}
	switch f.Options.Formatting.Time {
	case "", TimeFormattingNone:
		return false
	}
	return true
}

// TimeZone returns the display timezone configured on the field, or ""
func (f *FieldDescriptor) TimeZone() string {
	if f.Options.Formatting == nil {
		return ""
	}
	return f.Options.Formatting.TimeZone
}

// FieldMap indexes field descriptors by id
type FieldMap map[string]*FieldDescriptor

// NewFieldMap builds a FieldMap from a list of descriptors
func NewFieldMap(fields ...*FieldDescriptor) FieldMap {
	m := make(FieldMap, len(fields))
	for _, f := range fields {
		m[f.ID] = f
	}
	return m
}

// Get returns the descriptor for id or an UnknownFieldError
func (m FieldMap) Get(id string) (*FieldDescriptor, error) {
	f, ok := m[id]
	if !ok || f == nil {
		return nil, NewUnknownFieldError(id)
	}
	return f, nil
}

// FieldRepository loads persisted field metadata
type FieldRepository interface {
	// ListByTable returns the descriptors of every field of a table
	ListByTable(ctx context.Context, tableID string) ([]*FieldDescriptor, error)
}
