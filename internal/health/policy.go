package health

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy bounds a validation run. The delay between attempts is fixed.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 30,
		Interval:    2 * time.Second,
	}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.Interval < 0 {
		return fmt.Errorf("%w: interval cannot be negative, got %s", ErrInvalidPolicy, p.Interval)
	}
	return nil
}

// Budget is the longest a run can spend sleeping.
func (p Policy) Budget() time.Duration {
	if p.MaxAttempts < 2 {
		return 0
	}
	return time.Duration(p.MaxAttempts-1) * p.Interval
}
