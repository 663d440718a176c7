package usecase

import (
	"context"
	"time"

	"MarketPulse/internal/provider"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"

	"github.com/robfig/cron/v3"
)

// SentimentRollup periodically refreshes the sentiment row for each
// watchlist symbol so insight requests read a warm score instead of
// triggering a news fetch.
type SentimentRollup struct {
	chain     *provider.Chain
	sentiment *sentiment.Service
	watchlist []string
	lookback  time.Duration
	schedule  string
	newsLimit int
	log       *logger.Logger
	cron      *cron.Cron
}

func NewSentimentRollup(
	chain *provider.Chain,
	sent *sentiment.Service,
	watchlist []string,
	lookback time.Duration,
	schedule string,
	log *logger.Logger,
) *SentimentRollup {
	return &SentimentRollup{
		chain:     chain,
		sentiment: sent,
		watchlist: watchlist,
		lookback:  lookback,
		schedule:  schedule,
		newsLimit: 50,
		log:       log,
	}
}

// Start registers the cron entry and begins the schedule. No-op when the
// watchlist is empty.
func (r *SentimentRollup) Start() error {
	if len(r.watchlist) == 0 {
		r.log.Info("sentiment rollup disabled, empty watchlist")
		return nil
	}
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.schedule, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("sentiment rollup started",
		logger.String("schedule", r.schedule),
		logger.Int("symbols", len(r.watchlist)),
	)
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (r *SentimentRollup) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

func (r *SentimentRollup) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	hours := int(r.lookback / time.Hour)
	if hours < 1 {
		hours = 1
	}
	for _, raw := range r.watchlist {
		sym, ok := symbol.NormalizeValid(raw)
		if !ok {
			r.log.Warn("rollup skipping invalid symbol", logger.String("symbol", raw))
			continue
		}
		items, err := r.chain.FetchNews(ctx, sym, hours, r.newsLimit)
		if err != nil {
			r.log.Warn("rollup news fetch failed",
				logger.String("symbol", sym),
				logger.Error(err),
			)
			continue
		}
		if _, err := r.sentiment.Compute(ctx, sym, items, r.lookback); err != nil {
			r.log.Warn("rollup sentiment compute failed",
				logger.String("symbol", sym),
				logger.Error(err),
			)
		}
	}
}
