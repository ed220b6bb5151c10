package interceptor

import (
	"context"

	"github.com/nulzo/cachekit/internal/core/domain"
)

// Wrap1 decorates a one-argument method with the caching protocol of meta.
// name is the binding under which key expressions see the argument.
func Wrap1[A, T any](in *Interceptor, meta *domain.CacheMetadata, name string, fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		call := domain.NewCallContext(domain.Param{Name: name, Value: a})
		return Intercept(ctx, in, meta, call, func(ctx context.Context) (T, error) {
			return fn(ctx, a)
		})
	}
}

// Wrap2 is Wrap1 for two-argument methods.
func Wrap2[A, B, T any](in *Interceptor, meta *domain.CacheMetadata, nameA, nameB string, fn func(context.Context, A, B) (T, error)) func(context.Context, A, B) (T, error) {
	return func(ctx context.Context, a A, b B) (T, error) {
		call := domain.NewCallContext(
			domain.Param{Name: nameA, Value: a},
			domain.Param{Name: nameB, Value: b},
		)
		return Intercept(ctx, in, meta, call, func(ctx context.Context) (T, error) {
			return fn(ctx, a, b)
		})
	}
}
