package store

import (
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenet/pkg/platform/sentinel"
)

func TestTranslateWriteErr(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		require.NoError(t, translateWriteErr(nil, "create company"))
	})

	t.Run("unique violation becomes a conflict", func(t *testing.T) {
		err := translateWriteErr(&pgconn.PgError{Code: pgUniqueViolation}, "create company")
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("anything else is an infrastructure fault", func(t *testing.T) {
		err := translateWriteErr(io.ErrUnexpectedEOF, "create company")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "the driver error stays inspectable")
		assert.NotErrorIs(t, err, sentinel.ErrConflict)
	})
}

func TestInfraErrKeepsOperationAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := infraErr("list evidence", cause)

	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list evidence")
}
