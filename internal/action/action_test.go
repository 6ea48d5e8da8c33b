package action

import (
	"errors"
	"testing"

	"github.com/flumox/flumox-server/internal/view"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIdentForWidget(t *testing.T) {
	riddleID := uuid.New()
	introID := uuid.New()
	ids := view.IdentID{"riddle": riddleID, "intro": introID}

	ident, ok := identForWidget(ids, riddleID)
	assert.True(t, ok)
	assert.Equal(t, "riddle", ident)

	_, ok = identForWidget(ids, uuid.New())
	assert.False(t, ok)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(errors.New("boring error")))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
}
