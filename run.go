package main

import (
	"time"

	"github.com/google/uuid"
)

// RunContext is computed once at program start and reported by /run and /health.
type RunContext struct {
	ID    string
	Start time.Time
}

func NewRunContext(now time.Time) RunContext {
	return RunContext{
		ID:    uuid.NewString(),
		Start: time.UnixMilli(now.UnixMilli()), // ms precision, no monotonic
	}
}
