package apperr_test

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"storeapp/internal/apperr"
)

func TestKindOf(t *testing.T) {
	err := apperr.New(apperr.KindConflict, "email %s taken", "a@b.com")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "email a@b.com taken", err.Error())

	// Wrapping preserves the kind through %w chains.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(wrapped))
	assert.True(t, apperr.IsConflict(wrapped))

	// Uncategorized errors default to fatal storage.
	assert.Equal(t, apperr.KindFatalStorage, apperr.KindOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := apperr.Wrap(cause, apperr.KindFatalStorage, "failed to save")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to save")
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestIsTransient(t *testing.T) {
	assert.False(t, apperr.IsTransient(nil))
	assert.False(t, apperr.IsTransient(errors.New("syntax error")))

	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	assert.True(t, apperr.IsTransient(lockWait))
	assert.True(t, apperr.IsTransient(fmt.Errorf("tx failed: %w", lockWait)))

	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	assert.True(t, apperr.IsTransient(deadlock))

	duplicate := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.False(t, apperr.IsTransient(duplicate))

	assert.True(t, apperr.IsTransient(driver.ErrBadConn))
	assert.True(t, apperr.IsTransient(apperr.New(apperr.KindTransient, "connection lost")))
}
