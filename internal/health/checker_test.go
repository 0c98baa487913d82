package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticCheck struct {
	err error
}

func (c *staticCheck) HealthCheck(context.Context) error { return c.err }

func TestChecker_Check(t *testing.T) {
	checker := NewChecker(nil)
	checker.AddCheck("up", &staticCheck{})
	checker.AddCheck("down", &staticCheck{err: errors.New("connection refused")})

	results := checker.Check(context.Background())

	assert.Equal(t, "OK", results["up"])
	assert.Equal(t, "connection refused", results["down"])
}

func TestChecker_IgnoresNilChecks(t *testing.T) {
	checker := NewChecker(nil)
	checker.AddCheck("nil", nil)
	checker.AddCheck("", &staticCheck{})

	// A nil entry must never reach the probe loop, and the loop itself must
	// tolerate one.
	checker.checks["stray"] = nil

	results := checker.Check(context.Background())
	assert.Empty(t, results)
}
