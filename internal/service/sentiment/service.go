package sentiment

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

// Service scores headline sets and records each computation as an
// append-only row. Consumers read back the latest row overlapping their
// lookback rather than recomputing.
type Service struct {
	store domrepo.MarketStore
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store domrepo.MarketStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Compute scores items over the trailing window and persists one
// SentimentScore row. A store failure is reported but the computed score is
// still returned.
func (s *Service) Compute(ctx context.Context, symbol string, items []models.NewsItem, window time.Duration) (*models.SentimentScore, error) {
	end := s.now().UTC()
	score, n := Score(items)

	row := &models.SentimentScore{
		Symbol:      symbol,
		WindowStart: end.Add(-window),
		WindowEnd:   end,
		Score:       score,
		NArticles:   n,
	}

	if err := s.store.InsertSentiment(ctx, row); err != nil {
		s.log.Warn("sentiment insert failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return row, err
	}
	return row, nil
}

// Latest returns the most recent stored score whose window end falls inside
// the lookback, or nil when none exists.
func (s *Service) Latest(ctx context.Context, symbol string, lookback time.Duration) (*models.SentimentScore, error) {
	return s.store.LatestSentiment(ctx, symbol, s.now().UTC().Add(-lookback))
}
