package providers

import (
	"context"

	"go.uber.org/zap"

	"course-promo/internal/domain"
)

// CourseProvider yields normalized course records from one upstream source.
type CourseProvider interface {
	Name() string
	ListCourses(ctx context.Context) ([]domain.CourseRecord, error)
}

// FetchOrEmpty is the fetch boundary of a scheduled run: an upstream failure
// is logged and turned into an empty batch so the run still completes.
func FetchOrEmpty(ctx context.Context, p CourseProvider, log *zap.Logger) []domain.CourseRecord {
	courses, err := p.ListCourses(ctx)
	if err != nil {
		log.Warn("course listing failed, continuing with no courses",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return nil
	}
	log.Info("courses fetched", zap.String("provider", p.Name()), zap.Int("count", len(courses)))
	return courses
}
