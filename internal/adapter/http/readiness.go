package http

import (
	"context"
	"errors"
)

type readinessGroup []ReadinessChecker

// AllReady combines checkers into one that is ready only when every checker
// is. All failures are reported, joined in order.
func AllReady(checkers ...ReadinessChecker) ReadinessChecker {
	return readinessGroup(checkers)
}

func (g readinessGroup) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range g {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
