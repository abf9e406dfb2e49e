package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedError error
		expectedMsg   string
	}{
		{
			name:          "nil_error",
			err:           nil,
			expectedError: nil,
		},
		{
			name:          "sql_no_rows",
			err:           sql.ErrNoRows,
			expectedError: store.ErrNotFound,
		},
		{
			name:          "wrapped_no_rows",
			err:           fmt.Errorf("scan: %w", sql.ErrNoRows),
			expectedError: store.ErrNotFound,
		},
		{
			name: "unique_violation",
			err: &pgconn.PgError{
				Code:           uniqueViolationCode,
				ConstraintName: "tasks_pkey",
			},
			expectedError: store.ErrDuplicate,
		},
		{
			name: "check_constraint_violation",
			err: &pgconn.PgError{
				Code:           checkViolationCode,
				ConstraintName: "tasks_status_check",
			},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "tasks_status_check",
		},
		{
			name: "not_null_violation",
			err: &pgconn.PgError{
				Code:       notNullViolationCode,
				ColumnName: "title",
			},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "not null violation (title)",
		},
		{
			name:          "string_too_long",
			err:           &pgconn.PgError{Code: stringTooLongCode},
			expectedError: store.ErrInvalidEntity,
		},
		{
			name:        "generic_error",
			err:         errors.New("connection reset"),
			expectedMsg: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)

			if tt.err == nil {
				assert.NoError(t, result)
				return
			}

			if tt.expectedError != nil {
				assert.ErrorIs(t, result, tt.expectedError)
			}
			if tt.expectedMsg != "" {
				assert.Contains(t, result.Error(), tt.expectedMsg)
			}
			// The original error must stay reachable for logging.
			if _, isPg := tt.err.(*pgconn.PgError); isPg {
				var pgErr *pgconn.PgError
				assert.ErrorAs(t, result, &pgErr)
			}
		})
	}
}
