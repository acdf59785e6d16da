package usecase

import "context"

// Trigger names what started an analysis.
type Trigger string

const (
	TriggerAPI   Trigger = "api"
	TriggerCLI   Trigger = "cli"
	TriggerCron  Trigger = "cron"
	TriggerKafka Trigger = "kafka"
)

type ctxKey int

const (
	triggerKey ctxKey = iota
	requestIDKey
)

func WithTrigger(ctx context.Context, t Trigger) context.Context {
	return context.WithValue(ctx, triggerKey, t)
}

func TriggerFrom(ctx context.Context) Trigger {
	if t, ok := ctx.Value(triggerKey).(Trigger); ok {
		return t
	}
	return TriggerAPI
}

// WithRequestID attaches the caller's correlation id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
