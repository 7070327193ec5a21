package logger

import "context"

type contextKey string

const CycleIDKey contextKey = "cycle_id"

func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CycleIDKey, id)
}

func GetCycleID(ctx context.Context) string {
	if id, ok := ctx.Value(CycleIDKey).(string); ok {
		return id
	}
	return ""
}
