package util

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type ContextKey string

const (
	CorrelationIdKey ContextKey = "CorrelationId"
)

func valueToCtx[T any](ctx context.Context, key ContextKey, value T) context.Context {
	return context.WithValue(ctx, key, value)
}

func valueFromCtx[T any](ctx context.Context, key ContextKey) (T, error) {
	valueFromCtx := ctx.Value(key)
	if valueFromCtx == nil {
		return *new(T), ErrValueNotFoundInContext.Wrapf("%v not found in context", key)
	}
	value, ok := valueFromCtx.(T)
	if !ok {
		return *new(T), ErrInvalidValueInContext.Wrap(fmt.Errorf("%v is not of type %T on context", key, *new(T)))
	}
	return value, nil
}

func CorrelationIdToCtx(ctx context.Context, correlationId string) context.Context {
	return valueToCtx(ctx, CorrelationIdKey, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) (string, error) {
	return valueFromCtx[string](ctx, CorrelationIdKey)
}

// CorrelationIdFromCtxOrNew returns the correlation id carried by ctx, or a
// fresh uuid when there is none.
func CorrelationIdFromCtxOrNew(ctx context.Context) string {
	if correlationId, err := CorrelationIdFromCtx(ctx); err == nil && correlationId != "" {
		return correlationId
	}
	return uuid.New().String()
}
