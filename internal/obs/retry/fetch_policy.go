package retry

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// FetchAttempts is the total invocation cap for one fetch slot. Past it
// the slot yields no sample instead of an error.
const FetchAttempts = 4

// FetchPolicy bounds one sample-fetch slot. Attempts go back-to-back: the
// fetchers already spend their own time waiting (queue polling, subprocess
// runtime), so an extra inter-attempt delay buys nothing.
func FetchPolicy(name string, log *zap.Logger) Policy {
	return Policy{
		Name:     name,
		Attempts: FetchAttempts,
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("fetch attempt failed", zap.String("fetch", name), zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("fetch retries exhausted", zap.String("fetch", name), zap.Error(err))
			}
		},
	}
}
