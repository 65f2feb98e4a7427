package services

import (
	"context"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/cache"
	"github.com/AliAamir1/budsapp/internal/models"
)

// ExamService serves the exam catalog used during onboarding. The catalog
// barely changes, so it is cached with a long staleness budget.
type ExamService interface {
	Exams(ctx context.Context) ([]models.Exam, error)
}

type examService struct {
	gw    api.Gateway
	cache *cache.Store
}

func NewExamService(gw api.Gateway, c *cache.Store) ExamService {
	return &examService{gw: gw, cache: c}
}

func (s *examService) Exams(ctx context.Context) ([]models.Exam, error) {
	return cache.Lookup(ctx, s.cache, cache.KeyExams, cache.TTLExams,
		func(ctx context.Context) ([]models.Exam, error) {
			return s.gw.Exams(ctx)
		})
}
