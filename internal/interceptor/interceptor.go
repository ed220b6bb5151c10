// Package interceptor wraps calls with read-through, eviction and
// write-through caching driven by a call site's CacheMetadata.
//
// A single pass through one of three flows is the whole lifecycle of a call:
//
//	cacheable: resolve the key, then resolve and read each cache in order
//	           and return the first hit; names after a hit are never looked
//	           up. On a miss everywhere invoke once and write the result to
//	           every cache.
//	evict:     resolve caches and key, invoke, then delete the key (or flush
//	           every cache when AllEntries is set). The key is resolved
//	           before invoking, so a key error means the method never runs.
//	update:    resolve caches, invoke, resolve the key (it may reference the
//	           result), then write the result to every cache.
//
// Failures of the wrapped method are returned unchanged and suppress every
// cache mutation. Cache writes after a successful invocation are best effort:
// failures are logged and reported, and the result is still returned.
// Concurrent misses on the same key may each invoke the wrapped method.
package interceptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/nulzo/cachekit/internal/cache"
	"github.com/nulzo/cachekit/internal/core/domain"
	"github.com/nulzo/cachekit/internal/core/ports"
	"github.com/nulzo/cachekit/internal/expression"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const tracerName = "github.com/nulzo/cachekit/internal/interceptor"

type Interceptor struct {
	manager   *cache.Manager
	keys      ports.KeyGenerator
	evaluator ports.Evaluator
	reporter  ports.ErrorReporter
	logger    *zap.Logger
	tracer    trace.Tracer
}

type Option func(*Interceptor)

func WithLogger(l *zap.Logger) Option {
	return func(in *Interceptor) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithEvaluator replaces the built-in key expression evaluator.
func WithEvaluator(e ports.Evaluator) Option {
	return func(in *Interceptor) { in.evaluator = e }
}

// WithReporter receives cache failures that did not fail the call.
func WithReporter(r ports.ErrorReporter) Option {
	return func(in *Interceptor) { in.reporter = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(in *Interceptor) { in.tracer = t }
}

func New(manager *cache.Manager, keys ports.KeyGenerator, opts ...Option) *Interceptor {
	in := &Interceptor{
		manager:   manager,
		keys:      keys,
		evaluator: expression.New(),
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Intercept runs invoke under the caching protocol selected by meta.Mode.
// invoke is called at most once.
func Intercept[T any](ctx context.Context, in *Interceptor, meta *domain.CacheMetadata, call domain.CallContext, invoke func(context.Context) (T, error)) (T, error) {
	ctx, span := in.tracer.Start(ctx, "cachekit.intercept", trace.WithAttributes(
		attribute.String("cache.site", meta.Site),
		attribute.String("cache.mode", string(meta.Mode)),
		attribute.StringSlice("cache.names", meta.CacheNames),
	))
	defer span.End()

	var (
		result T
		err    error
	)
	switch meta.Mode {
	case domain.ModeCacheable:
		result, err = cacheable(ctx, in, meta, call, invoke)
	case domain.ModeEvict:
		result, err = evict(ctx, in, meta, call, invoke)
	case domain.ModeUpdate:
		result, err = update(ctx, in, meta, call, invoke)
	default:
		err = domain.InvalidMetadataError(fmt.Sprintf("site %s: unknown cache mode %q", meta.Site, meta.Mode), nil)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func cacheable[T any](ctx context.Context, in *Interceptor, meta *domain.CacheMetadata, call domain.CallContext, invoke func(context.Context) (T, error)) (T, error) {
	var zero T

	if len(meta.CacheNames) == 0 {
		return invoke(ctx)
	}

	key, err := in.resolveKey(meta, call, nil, false)
	if err != nil {
		return zero, err
	}

	caches := make([]*cache.Cache, 0, len(meta.CacheNames))
	for _, name := range meta.CacheNames {
		c, err := in.manager.GetCache(name)
		if err != nil {
			return zero, err
		}
		caches = append(caches, c)

		var cached T
		found, err := c.Get(ctx, key, &cached)
		if err != nil {
			// A failed read counts as a miss.
			in.report(ctx, meta, c, key, err, zap.WarnLevel)
			continue
		}
		if found {
			trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.hit", true))
			in.logger.Debug("cache hit",
				zap.String("site", meta.Site),
				zap.String("cache", c.Name()),
				zap.String("key", key),
			)
			return cached, nil
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.hit", false))
	in.logger.Debug("cache miss", zap.String("site", meta.Site), zap.String("key", key))

	result, err := invoke(ctx)
	if err != nil {
		return result, err
	}

	for _, c := range caches {
		if err := c.Set(ctx, key, result); err != nil {
			in.report(ctx, meta, c, key, err, zap.ErrorLevel)
		}
	}
	return result, nil
}

func evict[T any](ctx context.Context, in *Interceptor, meta *domain.CacheMetadata, call domain.CallContext, invoke func(context.Context) (T, error)) (T, error) {
	var zero T

	caches, err := in.resolveCaches(meta)
	if err != nil {
		return zero, err
	}

	var key string
	if !meta.AllEntries {
		// Evictions target an existing entry: only the arguments are bound.
		if key, err = in.resolveKey(meta, call, nil, false); err != nil {
			return zero, err
		}
	}

	result, err := invoke(ctx)
	if err != nil {
		return result, err
	}

	for _, c := range caches {
		if meta.AllEntries {
			err = c.FlushAll(ctx)
		} else {
			err = c.Delete(ctx, key)
		}
		if err != nil {
			in.report(ctx, meta, c, key, err, zap.ErrorLevel)
		}
	}
	return result, nil
}

func update[T any](ctx context.Context, in *Interceptor, meta *domain.CacheMetadata, call domain.CallContext, invoke func(context.Context) (T, error)) (T, error) {
	var zero T

	caches, err := in.resolveCaches(meta)
	if err != nil {
		return zero, err
	}

	result, err := invoke(ctx)
	if err != nil {
		return result, err
	}

	key, err := in.resolveKey(meta, call, result, true)
	if err != nil {
		// The method already ran; hand back its result with the key error.
		return result, err
	}

	for _, c := range caches {
		if err := c.Set(ctx, key, result); err != nil {
			in.report(ctx, meta, c, key, err, zap.ErrorLevel)
		}
	}
	return result, nil
}

func (in *Interceptor) resolveCaches(meta *domain.CacheMetadata) ([]*cache.Cache, error) {
	caches := make([]*cache.Cache, 0, len(meta.CacheNames))
	for _, name := range meta.CacheNames {
		c, err := in.manager.GetCache(name)
		if err != nil {
			return nil, err
		}
		caches = append(caches, c)
	}
	return caches, nil
}

// resolveKey evaluates the key expression when one is configured and applies
// the key generator to every argument otherwise.
func (in *Interceptor) resolveKey(meta *domain.CacheMetadata, call domain.CallContext, result any, withResult bool) (string, error) {
	if !meta.HasKeyExpression() {
		return in.keys.GenerateKey(call.Args()...)
	}

	bindings := call.Bindings()
	if withResult {
		bindings[domain.ResultBinding] = result
	}

	v, err := in.evaluator.Evaluate(meta.KeyExpression, bindings)
	if err != nil {
		if !errors.Is(err, domain.ErrExpressionEvaluation) {
			err = domain.ExpressionError(meta.KeyExpression, err)
		}
		return "", err
	}
	key, err := expression.String(v)
	if err != nil {
		return "", domain.ExpressionError(meta.KeyExpression, err)
	}
	return key, nil
}

func (in *Interceptor) report(ctx context.Context, meta *domain.CacheMetadata, c *cache.Cache, key string, err error, level zapcore.Level) {
	trace.SpanFromContext(ctx).AddEvent("cache.error", trace.WithAttributes(
		attribute.String("cache.name", c.Name()),
		attribute.String("error", err.Error()),
	))
	in.logger.Log(level, "cache operation failed",
		zap.String("site", meta.Site),
		zap.String("cache", c.Name()),
		zap.String("key", key),
		zap.Error(err),
	)
	if in.reporter != nil {
		in.reporter.Report(ctx, meta.Site, err)
	}
}
