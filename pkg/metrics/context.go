package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key holding the *newrelic.Application
var NewRelicContextKey = newRelicContextKey{}

// WithApplication returns a context carrying app. A nil app leaves the context
// untouched, which disables metrics reporting.
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func applicationFromContext(ctx context.Context) *newrelic.Application {
	nr, _ := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return nr
}

// StartTransaction starts a background newrelic transaction for name and
// returns a context carrying it. The returned function ends the transaction.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	nr := applicationFromContext(ctx)
	if nr == nil {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
