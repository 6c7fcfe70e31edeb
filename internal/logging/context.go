package logging

import "context"

type contextKey string

const contextFieldsKey contextKey = "til.logging.fields"

// ContextWithFields returns a context carrying structured log fields that
// loggers merge into subsequent entries. Fields already on the context are
// kept, with new values winning on key collisions.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := cloneFields(ContextFields(ctx), len(fields))
	for key, value := range fields {
		merged[key] = value
	}
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns the log fields annotated on the context. The result
// is a copy; mutating it does not change what future entries emit.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return cloneFields(fields, 0)
}

func cloneFields(fields map[string]any, extra int) map[string]any {
	copied := make(map[string]any, len(fields)+extra)
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}
