package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the tracer name for nugetcatalog operations
	TracerName = "github.com/willibrandon/nugetcatalog"
)

// Common attribute keys
const (
	AttrPackageName = attribute.Key("nuget.package.name")
	AttrSourceURL   = attribute.Key("nuget.source.url")
	AttrProjectPath = attribute.Key("catalog.project.path")
	AttrStage       = attribute.Key("catalog.stage")
	AttrMode        = attribute.Key("catalog.mode")
	AttrRunID       = attribute.Key("catalog.run.id")
	AttrUnitCount   = attribute.Key("catalog.units")
	AttrCacheHit    = attribute.Key("catalog.cache.hit")
)

// StartPipelineSpan starts the root span of one catalog run.
func StartPipelineSpan(ctx context.Context, runID, mode string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "catalog.run",
		trace.WithAttributes(
			AttrRunID.String(runID),
			AttrMode.String(mode),
		),
	)
}

// StartStageSpan starts a span covering one fan-out batch.
func StartStageSpan(ctx context.Context, stage string, units int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "catalog.stage."+stage,
		trace.WithAttributes(
			AttrStage.String(stage),
			AttrUnitCount.Int(units),
		),
	)
}

// StartMetadataQuerySpan starts a span for a registry metadata lookup.
func StartMetadataQuerySpan(ctx context.Context, packageName, sourceURL string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "registry.metadata",
		trace.WithAttributes(
			AttrPackageName.String(packageName),
			AttrSourceURL.String(sourceURL),
		),
	)
}

// StartCacheLookupSpan starts a span for a store lookup
func StartCacheLookupSpan(ctx context.Context, cacheKey string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "cache.lookup",
		trace.WithAttributes(
			attribute.String("cache.key", cacheKey),
		),
	)
}

// RecordCacheHit records cache hit/miss on the current span
func RecordCacheHit(ctx context.Context, hit bool) {
	SetAttributes(ctx, AttrCacheHit.Bool(hit))
}

// RecordRetry records a retry attempt on the current span
func RecordRetry(ctx context.Context, attempt int, err error) {
	span := SpanFromContext(ctx)
	attrs := []attribute.KeyValue{attribute.Int("retry.attempt", attempt)}
	if err != nil {
		attrs = append(attrs, attribute.String("retry.error", err.Error()))
	}
	span.AddEvent("retry", trace.WithAttributes(attrs...))
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
