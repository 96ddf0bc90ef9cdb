package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists cycle records to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log *zap.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external tools can read while the dashboard writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycle_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			interval         TEXT NOT NULL,
			low_24h          REAL,
			high_24h         REAL,
			change_1h        REAL,
			change_24h       REAL,
			change_7d        REAL,
			volume_24h       REAL,
			market_cap       REAL,
			all_time_high    REAL,
			latest_close     REAL,
			candle_count     INTEGER,
			ma20             REAL,
			ma50             REAL,
			ma200            REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_ts ON cycle_snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := rec.Snapshot

	// Absent optionals are stored as NULL, never as zero.
	var marketCap, ma20, ma50, ma200 sql.NullFloat64
	if snap.MarketCap.Valid {
		marketCap = sql.NullFloat64{Float64: snap.MarketCap.Value, Valid: true}
	}
	if rec.MA20.Valid {
		ma20 = sql.NullFloat64{Float64: rec.MA20.Value, Valid: true}
	}
	if rec.MA50.Valid {
		ma50 = sql.NullFloat64{Float64: rec.MA50.Value, Valid: true}
	}
	if rec.MA200.Valid {
		ma200 = sql.NullFloat64{Float64: rec.MA200.Value, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO cycle_snapshots
		(timestamp, symbol, interval, low_24h, high_24h,
		 change_1h, change_24h, change_7d, volume_24h,
		 market_cap, all_time_high, latest_close, candle_count,
		 ma20, ma50, ma200)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.Symbol, string(rec.Interval),
		snap.Low24h, snap.High24h,
		snap.PriceChange1h, snap.PriceChange24h, snap.PriceChange7d,
		snap.Volume24h, marketCap, snap.AllTimeHigh,
		rec.LatestClose, rec.CandleCount,
		ma20, ma50, ma200,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
