package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vuquimar/api-rei-do-pano/pkg/database"

var slowQuery struct {
	mu        sync.RWMutex
	threshold time.Duration
	log       *slog.Logger
}

// SetSlowQueryLogging enables warning logs for queries that run longer than
// threshold. A zero threshold disables it. The full-text search query is the
// usual suspect once the catalog grows past a few hundred thousand rows.
func SetSlowQueryLogging(threshold time.Duration, log *slog.Logger) {
	slowQuery.mu.Lock()
	defer slowQuery.mu.Unlock()
	slowQuery.threshold = threshold
	slowQuery.log = log
}

func slowQueryConfig() (time.Duration, *slog.Logger) {
	slowQuery.mu.RLock()
	defer slowQuery.mu.RUnlock()
	return slowQuery.threshold, slowQuery.log
}

// TraceQuery opens a client span around a database operation. The returned
// func must be called with the operation's error when it finishes:
//
//	ctx, end := database.TraceQuery(ctx, "SearchProducts", searchSQL)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		threshold, log := slowQueryConfig()
		if threshold <= 0 || log == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			attrs := []any{
				slog.String("operation", operation),
				slog.String("statement", statement),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			log.WarnContext(ctx, "slow query", attrs...)
		}
	}
}
