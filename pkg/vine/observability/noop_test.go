package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNoopMetrics verifies the no-op recorder does nothing and never
// panics.
func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordFunctionExecution(ctx, "s/f", time.Second, nil)
		m.RecordFunctionExecution(ctx, "s/f", time.Second, errors.New("x"))
		m.RecordMachineRun(ctx, "m", true, time.Second)
		m.RecordTaskExecution(ctx, time.Second, nil)
	})
}

// TestNoopSpanManager verifies the no-op span manager returns usable
// spans and contexts.
func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	runCtx, runSpan := sm.StartRunSpan(ctx, "m", "r")
	assert.Equal(t, ctx, runCtx)
	assert.NotNil(t, runSpan)

	fnCtx, fnSpan := sm.StartFunctionSpan(ctx, "s/f")
	assert.Equal(t, ctx, fnCtx)
	assert.NotNil(t, fnSpan)

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(runSpan, errors.New("x"))
		sm.EndSpanWithError(fnSpan, nil)
		sm.AddSpanEvent(ctx, "event")
	})
}
