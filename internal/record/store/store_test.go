package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestClassify(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "UniqueViolation",
			err:     fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", Detail: "Key (reference)=(PAY-1) already exists."}),
			wantErr: record.ErrConflict,
		},
		{
			name:    "CheckViolation",
			err:     &pgconn.PgError{Code: "23514", ConstraintName: "records_amount_check"},
			wantErr: record.ErrInvalid,
		},
		{
			name:    "OtherPgError",
			err:     &pgconn.PgError{Code: "40001"},
			wantErr: nil,
		},
		{
			name:    "NotPgError",
			err:     plain,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, got, tt.wantErr)
				return
			}

			assert.Equal(t, tt.err, got)
		})
	}

	assert.NoError(t, classify(nil))
}
