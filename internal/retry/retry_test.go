package retry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"storeapp/internal/retry"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy().Do("op", func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	calls := 0
	err := fastPolicy().Do("op", func() error {
		calls++
		if calls < 3 {
			return lockWait
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	calls := 0
	err := fastPolicy().Do("op", func() error {
		calls++
		return lockWait
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, lockWait)
	assert.Equal(t, 3, calls)
}

func TestDoZeroValuePolicyRunsOnce(t *testing.T) {
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	calls := 0
	err := retry.Policy{}.Do("op", func() error {
		calls++
		return lockWait
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoDoesNotRetryFatalErrors(t *testing.T) {
	fatal := errors.New("constraint violated")
	calls := 0
	err := fastPolicy().Do("op", func() error {
		calls++
		return fatal
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}
