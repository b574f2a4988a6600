package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithoutApplication(t *testing.T) {
	ctx := WithApplication(context.Background(), nil)
	assert.Nil(t, ctx.Value(NewRelicContextKey))

	// Everything is a no-op without an application or transaction
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)

	txnCtx, end := StartTransaction(ctx, "txn")
	assert.Equal(t, ctx, txnCtx)
	end()

	tracer := TraceMethodCall(ctx, "metrics_test", "TestWithoutApplication")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("error"))
	tracer.End()
}

func TestForwardedMessage(t *testing.T) {
	entry := logrus.NewEntry(logrus.StandardLogger())
	entry.Message = "phase confirmed"
	assert.Equal(t, "phase confirmed", forwardedMessage(entry))

	entry = entry.WithField("phase", "deposit").WithError(errors.New("failed"))
	entry.Message = "phase failed"
	assert.Equal(t, `message="phase failed", error="failed", data={"phase":"deposit"}`, forwardedMessage(entry))
}
