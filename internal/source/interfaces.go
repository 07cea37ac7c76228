package source

import (
	"context"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// EventStore reads chat events. QueryEvents returns events for one module,
// newest first, bounded by q.Limit.
type EventStore interface {
	QueryEvents(ctx context.Context, q model.EventQuery) ([]model.ChatMessageEvent, error)
}

// Hierarchy exposes the module -> course -> university reference data and
// professor course assignments.
type Hierarchy interface {
	ListModules(ctx context.Context) ([]model.ModuleRef, error)
	ListCourses(ctx context.Context) ([]model.CourseRef, error)
	ListProfessorCourses(ctx context.Context, professorID int64) ([]int64, error)
}

// PricingSource returns the currently active model pricing rows.
type PricingSource interface {
	GetActiveModels(ctx context.Context) ([]model.ModelPricing, error)
}

// TranscriptionSource returns completed transcription costs for modules.
// Nil bounds are unbounded.
type TranscriptionSource interface {
	GetCompletedTranscriptions(ctx context.Context, moduleIDs []int64, start, end *time.Time) ([]model.TranscriptionCost, error)
}
