package services

import (
	"context"

	"subreel/internal/logging"
)

type (
	runIDKey struct{}
	stageKey struct{}
)

// WithRunID annotates ctx with the ingest run identifier. Blank ids leave ctx
// unchanged.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithStage records which pipeline step ("probe", "extract") a call belongs to.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey{}, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageKey{}).(string)
	return stage, ok && stage != ""
}

// LogAttrs returns the run id and stage carried by ctx as log attributes.
func LogAttrs(ctx context.Context) []logging.Attr {
	var attrs []logging.Attr
	if id, ok := RunIDFromContext(ctx); ok {
		attrs = append(attrs, logging.String(logging.FieldRunID, id))
	}
	if stage, ok := StageFromContext(ctx); ok {
		attrs = append(attrs, logging.String("stage", stage))
	}
	return attrs
}
