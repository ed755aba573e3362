package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"storeapp/internal/apperr"
)

// Policy bounds how often a storage operation is retried and how long to
// wait between attempts. Only errors apperr.IsTransient recognizes are
// retried; everything else aborts immediately.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
}

// Default gives three attempts with increasing backoff, enough to ride
// out brief lock contention without stalling the request.
func Default() Policy {
	return Policy{MaxAttempts: 3, InitialInterval: 300 * time.Millisecond}
}

// Do runs op, retrying transient failures per the policy. The last error
// is returned once the attempt budget is exhausted.
func (p Policy) Do(name string, op func() error) error {
	// A zero-value policy means no retries, not an unbounded loop.
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 1
	}

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if apperr.IsTransient(err) {
			logrus.Warnf("%s: transient failure on attempt %d: %v", name, attempt, err)
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	return backoff.Retry(wrapped, backoff.WithMaxRetries(bo, p.MaxAttempts-1))
}
