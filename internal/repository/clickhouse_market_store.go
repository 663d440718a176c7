package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

// CHMarketStore implements MarketStore backed by ClickHouse.
type CHMarketStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client, database string) domrepo.MarketStore {
	if database == "" {
		database = "marketpulse"
	}
	return &CHMarketStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketStore) table(name string) string {
	return s.database + "." + name
}

func (s *CHMarketStore) StoreBars(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Multi-row VALUES inserts, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				b.Symbol,
				time.Unix(b.Timestamp, 0).UTC(),
				b.Open,
				b.High,
				b.Low,
				b.Close,
				b.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, ts, open, high, low, close, volume) VALUES %s",
			s.table("prices"), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

func (s *CHMarketStore) QueryBars(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Bar, error) {
	q := fmt.Sprintf(`
        SELECT symbol, ts, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
        LIMIT ?`, s.table("prices"))
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query_bars error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Bar, 0, 256)
	for rows.Next() {
		var b models.Bar
		var ts time.Time
		if err := rows.Scan(&b.Symbol, &ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = ts.Unix()
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *CHMarketStore) UpsertDailyAggregates(ctx context.Context, aggs []*models.DailyAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(aggs); start += chunkSize {
		end := start + chunkSize
		if end > len(aggs) {
			end = len(aggs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, a := range aggs[start:end] {
			if a == nil || a.Symbol == "" || a.Date == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				a.Symbol,
				a.Date,
				a.High,
				a.Low,
				a.Close,
				a.Volume,
				nullFloat(a.RSI14),
				nullFloat(a.SMA50),
				nullFloat(a.SMA200),
				nullFloat(a.ATR14),
				nullFloat(a.MACD),
				nullFloat(a.MACDSignal),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, date, high, low, close, volume, rsi14, sma50, sma200, atr14, macd, macd_signal) VALUES %s",
			s.table("daily_agg"), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("upsert daily aggregates: %w", err)
		}
	}
	return nil
}

func (s *CHMarketStore) QueryDailyAggregates(ctx context.Context, symbol string, limit int) ([]*models.DailyAggregate, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT symbol, toString(date), high, low, close, volume,
               rsi14, sma50, sma200, atr14, macd, macd_signal
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY date DESC
        LIMIT ?`, s.table("daily_agg"))
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query_daily_agg error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query daily aggregates: %w", err)
	}
	defer rows.Close()

	tmp := make([]*models.DailyAggregate, 0, limit)
	for rows.Next() {
		var a models.DailyAggregate
		var rsi, sma50, sma200, atr, macd, macdSig sql.NullFloat64
		if err := rows.Scan(&a.Symbol, &a.Date, &a.High, &a.Low, &a.Close, &a.Volume,
			&rsi, &sma50, &sma200, &atr, &macd, &macdSig); err != nil {
			return nil, fmt.Errorf("scan daily aggregate: %w", err)
		}
		a.RSI14 = fromNull(rsi)
		a.SMA50 = fromNull(sma50)
		a.SMA200 = fromNull(sma200)
		a.ATR14 = fromNull(atr)
		a.MACD = fromNull(macd)
		a.MACDSignal = fromNull(macdSig)
		tmp = append(tmp, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to date ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse query_daily_agg ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHMarketStore) StoreNews(ctx context.Context, symbol string, items []*models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}
	values := make([]string, 0, len(items))
	args := make([]interface{}, 0, len(items)*7)
	for _, it := range items {
		if it == nil || it.URL == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			symbol,
			it.URL,
			it.Title,
			it.Source,
			it.PublishedAt.UTC(),
			it.Provider,
			nullFloat(it.Score),
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, url, title, source, published_at, provider, score) VALUES %s",
		s.table("news_articles"), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store news: %w", err)
	}
	return nil
}

func (s *CHMarketStore) InsertSentiment(ctx context.Context, sc *models.SentimentScore) error {
	q := fmt.Sprintf("INSERT INTO %s (symbol, window_start, window_end, score, n_articles) VALUES (?, ?, ?, ?, ?)",
		s.table("sentiment_scores"))
	_, err := s.db.ExecContext(ctx, q,
		sc.Symbol,
		sc.WindowStart.UTC(),
		sc.WindowEnd.UTC(),
		sc.Score,
		uint32(sc.NArticles),
	)
	if err != nil {
		return fmt.Errorf("insert sentiment: %w", err)
	}
	return nil
}

func (s *CHMarketStore) LatestSentiment(ctx context.Context, symbol string, since time.Time) (*models.SentimentScore, error) {
	q := fmt.Sprintf(`
        SELECT symbol, window_start, window_end, score, n_articles
        FROM %s
        WHERE symbol = ? AND window_end >= ?
        ORDER BY window_end DESC
        LIMIT 1`, s.table("sentiment_scores"))
	row := s.db.QueryRowContext(ctx, q, symbol, since)
	var sc models.SentimentScore
	var n uint32
	if err := row.Scan(&sc.Symbol, &sc.WindowStart, &sc.WindowEnd, &sc.Score, &n); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest sentiment: %w", err)
	}
	sc.NArticles = int(n)
	return &sc, nil
}

func (s *CHMarketStore) LatestOptionsSummary(ctx context.Context, symbol string) (*models.OptionsSummary, error) {
	q := fmt.Sprintf(`
        SELECT symbol, as_of, put_call_ratio, tilt
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY as_of DESC
        LIMIT 1`, s.table("options_summary"))
	row := s.db.QueryRowContext(ctx, q, symbol)
	var o models.OptionsSummary
	if err := row.Scan(&o.Symbol, &o.AsOf, &o.PutCallRatio, &o.Tilt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest options summary: %w", err)
	}
	return &o, nil
}

func (s *CHMarketStore) LatestInstitutionalFlow(ctx context.Context, symbol string) (*models.InstitutionalFlow, error) {
	q := fmt.Sprintf(`
        SELECT symbol, as_of, net_flow_usd, tilt
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY as_of DESC
        LIMIT 1`, s.table("institutional_flows"))
	row := s.db.QueryRowContext(ctx, q, symbol)
	var f models.InstitutionalFlow
	if err := row.Scan(&f.Symbol, &f.AsOf, &f.NetFlowUSD, &f.Tilt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest institutional flow: %w", err)
	}
	return &f, nil
}

func (s *CHMarketStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func fromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
