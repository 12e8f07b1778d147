package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrSessionID = "session.id"
	AttrProjectID = "project.id"
	AttrUserID    = "user.id"

	AttrPrefState  = "preference.state"
	AttrPrefAction = "preference.action"
	AttrPrefSlot   = "preference.slot"

	AttrFetchGeneration = "fetch.generation"
	AttrFetchGroupBy    = "fetch.group_by"
	AttrFetchOrderBy    = "fetch.order_by"
	AttrFetchFilter     = "fetch.filter"
	AttrFetchCount      = "fetch.count"
	AttrFetchStale      = "fetch.stale"

	AttrCacheHit = "cache.hit"
)

// Span names.
const (
	SpanSyncLoad          = "sync.load"
	SpanSyncSave          = "sync.save"
	SpanSyncSaveAsDefault = "sync.save_default"
	SpanFetchIssues       = "issuelist.fetch"
	SpanRepoLoad          = "repo.preference.load"
	SpanRepoSave          = "repo.preference.save"
	SpanRepoFetch         = "repo.issues.fetch"
)

// RecordError marks the span failed. A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
