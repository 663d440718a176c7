package repository

// SchemaStatements returns the idempotent DDL applied at startup through
// pkg/clickhouse Client.InitSchema.
func SchemaStatements(database string) []string {
	if database == "" {
		database = "marketpulse"
	}
	return []string{
		"CREATE DATABASE IF NOT EXISTS " + database,

		`CREATE TABLE IF NOT EXISTS ` + database + `.prices (
            symbol LowCardinality(String),
            ts DateTime,
            open Float64,
            high Float64,
            low Float64,
            close Float64,
            volume Float64
        ) ENGINE = ReplacingMergeTree()
        PARTITION BY toYYYYMM(ts)
        ORDER BY (symbol, ts)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.daily_agg (
            symbol LowCardinality(String),
            date Date,
            high Float64,
            low Float64,
            close Float64,
            volume Float64,
            rsi14 Nullable(Float64),
            sma50 Nullable(Float64),
            sma200 Nullable(Float64),
            atr14 Nullable(Float64),
            macd Nullable(Float64),
            macd_signal Nullable(Float64),
            updated_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, date)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.news_articles (
            symbol LowCardinality(String),
            url String,
            title String,
            source String,
            published_at DateTime,
            provider LowCardinality(String),
            score Nullable(Float64),
            inserted_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(inserted_at)
        ORDER BY (symbol, url)
        TTL published_at + INTERVAL 90 DAY`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.sentiment_scores (
            symbol LowCardinality(String),
            window_start DateTime,
            window_end DateTime,
            score Float64,
            n_articles UInt32,
            created_at DateTime DEFAULT now()
        ) ENGINE = MergeTree()
        ORDER BY (symbol, window_end)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.options_summary (
            symbol LowCardinality(String),
            as_of DateTime,
            put_call_ratio Float64,
            tilt Float64
        ) ENGINE = ReplacingMergeTree()
        ORDER BY (symbol, as_of)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.institutional_flows (
            symbol LowCardinality(String),
            as_of DateTime,
            net_flow_usd Float64,
            tilt Float64
        ) ENGINE = ReplacingMergeTree()
        ORDER BY (symbol, as_of)`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.live_cache (
            key String,
            value String,
            stored_at DateTime64(3),
            ttl_seconds Int64
        ) ENGINE = ReplacingMergeTree(stored_at)
        ORDER BY key
        TTL toDateTime(stored_at) + INTERVAL 2 DAY`,

		`CREATE TABLE IF NOT EXISTS ` + database + `.rate_gate (
            bucket LowCardinality(String),
            identity String,
            ts DateTime64(3)
        ) ENGINE = MergeTree()
        ORDER BY (bucket, identity, ts)
        TTL toDateTime(ts) + INTERVAL 3 DAY`,
	}
}
