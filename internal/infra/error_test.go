//go:build unit

package infra

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RepositoryErrorKind
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: KindNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: KindDuplicateKey},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: KindForeignKeyViolated},
		{name: "check", err: &pgconn.PgError{Code: "23514"}, want: KindConflict},
		{name: "other", err: errors.New("connection reset"), want: KindDBFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestWrapPgErr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := WrapPgErr(logger, "find coupon", pgx.ErrNoRows)
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindDBFailure))
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Contains(t, err.Error(), "NOT_FOUND: find coupon")
}
