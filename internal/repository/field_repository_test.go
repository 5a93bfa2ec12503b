package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/internal/repository/testutil"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

const listFieldsQuery = `SELECT id, name, type, cell_value_type, db_field_type, db_field_name, is_multiple_cell_value, options FROM fields WHERE table_id = $1 ORDER BY position, id`

func fieldRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "type", "cell_value_type", "db_field_type", "db_field_name", "is_multiple_cell_value", "options"}).
		AddRow("fldName", "Name", "singleLineText", "string", "TEXT", "name", false, []byte(`{}`)).
		AddRow("fldDue", "Due", "date", "dateTime", "DATETIME", "due", false,
			[]byte(`{"formatting":{"date":"YYYY-MM-DD","time":"None","timeZone":"Asia/Singapore"}}`))
}

func TestSQLFieldRepository_ListByTable(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes rows", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(listFieldsQuery)).
			WithArgs("records").
			WillReturnRows(fieldRows())

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, 0)
		defer repo.Close()

		fields, err := repo.ListByTable(ctx, "records")
		require.NoError(t, err)
		require.Len(t, fields, 2)
		assert.Equal(t, "name", fields[0].DbFieldName)
		assert.Equal(t, domain.CellValueTypeDateTime, fields[1].CellValueType)
		assert.Equal(t, "Asia/Singapore", fields[1].TimeZone())
		assert.False(t, fields[1].HasTime())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("caches per table", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(listFieldsQuery)).
			WithArgs("records").
			WillReturnRows(fieldRows())

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, time.Minute)
		defer repo.Close()

		first, err := repo.ListByTable(ctx, "records")
		require.NoError(t, err)
		second, err := repo.ListByTable(ctx, "records")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is not cached", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(listFieldsQuery)).
			WithArgs("records").
			WillReturnError(errors.New("connection reset"))
		mock.ExpectQuery(regexp.QuoteMeta(listFieldsQuery)).
			WithArgs("records").
			WillReturnRows(fieldRows())

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, time.Minute)
		defer repo.Close()

		_, err := repo.ListByTable(ctx, "records")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list fields")

		fields, err := repo.ListByTable(ctx, "records")
		require.NoError(t, err)
		assert.Len(t, fields, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid stored descriptor", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "name", "type", "cell_value_type", "db_field_type", "db_field_name", "is_multiple_cell_value", "options"}).
			AddRow("fldBad", "Bad", "date", "dateTime", "DATETIME", "due", false, []byte(`{"formatting":{"timeZone":"Mars/Olympus"}}`))
		mock.ExpectQuery(regexp.QuoteMeta(listFieldsQuery)).WithArgs("records").WillReturnRows(rows)

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, 0)
		defer repo.Close()

		_, err := repo.ListByTable(ctx, "records")
		assert.Error(t, err)
	})

	t.Run("malformed options", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "name", "type", "cell_value_type", "db_field_type", "db_field_name", "is_multiple_cell_value", "options"}).
			AddRow("fldName", "Name", "singleLineText", "string", "TEXT", "name", false, []byte(`{`))
		mock.ExpectQuery(regexp.QuoteMeta(listFieldsQuery)).WithArgs("records").WillReturnRows(rows)

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, 0)
		defer repo.Close()

		_, err := repo.ListByTable(ctx, "records")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid options")
	})
}

func TestSQLFieldRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts with dollar placeholders", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO fields \(table_id,position,id,name,type,cell_value_type,db_field_type,db_field_name,is_multiple_cell_value,options\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8,\$9,\$10\) ON CONFLICT \(id\) DO UPDATE`).
			WithArgs("records", 0, "fldName", "Name", "singleLineText", "string", "TEXT", "name", false, `{}`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, time.Minute)
		defer repo.Close()

		err := repo.Save(ctx, "records", 0, &domain.FieldDescriptor{
			ID: "fldName", Name: "Name", Type: domain.FieldTypeSingleLineText,
			CellValueType: domain.CellValueTypeString, DbFieldType: domain.DbFieldTypeText, DbFieldName: "name",
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid descriptors", func(t *testing.T) {
		db, _, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSQLFieldRepository(db, sqlexpr.Postgres, 0)
		defer repo.Close()

		err := repo.Save(ctx, "records", 0, &domain.FieldDescriptor{ID: "fldX"})
		assert.Error(t, err)
	})
}

func TestSQLFieldRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupSQLiteDB(t)

	repo := NewSQLFieldRepository(db, sqlexpr.SQLite, time.Minute)
	defer repo.Close()

	tags := &domain.FieldDescriptor{
		ID: "fldTags", Name: "Tags", Type: domain.FieldTypeMultipleSelect,
		CellValueType: domain.CellValueTypeString, DbFieldType: domain.DbFieldTypeJSON, DbFieldName: "tags",
		IsMultipleCellValue: true,
	}
	due := &domain.FieldDescriptor{
		ID: "fldDue", Name: "Due", Type: domain.FieldTypeDate,
		CellValueType: domain.CellValueTypeDateTime, DbFieldType: domain.DbFieldTypeDateTime, DbFieldName: "due",
		Options: domain.FieldOptions{Formatting: &domain.DatetimeFormatting{Time: domain.TimeFormatting24HM, TimeZone: "Europe/Paris"}},
	}
	require.NoError(t, repo.Save(ctx, "records", 1, tags))
	require.NoError(t, repo.Save(ctx, "records", 0, due))

	fields, err := repo.ListByTable(ctx, "records")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, due, fields[0])
	assert.Equal(t, tags, fields[1])

	// saving invalidates the cached list
	tags.Name = "Labels"
	require.NoError(t, repo.Save(ctx, "records", 1, tags))
	fields, err = repo.ListByTable(ctx, "records")
	require.NoError(t, err)
	assert.Equal(t, "Labels", fields[1].Name)

	other, err := repo.ListByTable(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
