package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "username constraint",
			err:  &pq.Error{Code: "23505", Constraint: "users_username_key"},
			want: ErrDuplicateUsername,
		},
		{
			name: "email index",
			err:  &pq.Error{Code: "23505", Constraint: "users_email_key"},
			want: ErrDuplicateEmail,
		},
		{
			name: "wrapped unique violation",
			err:  fmt.Errorf("insert failed: %w", &pq.Error{Code: "23505", Constraint: "users_email_key"}),
			want: ErrDuplicateEmail,
		},
		{
			name: "other pq error code",
			err:  &pq.Error{Code: "23503", Constraint: "users_username_key"},
			want: nil,
		},
		{
			name: "non-pq error",
			err:  errors.New("connection reset"),
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapUniqueViolation(tt.err))
		})
	}
}

type fakeResult struct {
	rows int64
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

func TestRequireRowAffected(t *testing.T) {
	assert.NoError(t, requireRowAffected(fakeResult{rows: 1}))
	assert.ErrorIs(t, requireRowAffected(fakeResult{rows: 0}), ErrNotFound)
}
