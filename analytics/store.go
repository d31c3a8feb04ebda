package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// timeLayout is the stored timestamp format. All values are UTC so the
// lexical order of the column equals chronological order.
const timeLayout = "2006-01-02 15:04:05"

// Store provides database operations for analytics.
type Store struct {
	db   *sql.DB
	salt string
}

// NewStore opens (or creates) the sqlite database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id TEXT PRIMARY KEY,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns a setting value by key, or "" when it is not set.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SaveVisit stores a page view. A missing ID is filled with a new UUID.
func (s *Store) SaveVisit(ctx context.Context, v *Visit) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (id, visitor_id, session_id, ip_hash, browser, os, device, path, referrer, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device, v.Path, v.Referrer,
		v.Timestamp.UTC().Format(timeLayout))
	return err
}

// SaveBotVisit stores a crawler view. A missing ID is filled with a new UUID.
func (s *Store) SaveBotVisit(ctx context.Context, bv *BotVisit) error {
	if bv.ID == "" {
		bv.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bot_visits (id, bot_name, ip_hash, user_agent, path, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		bv.ID, bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, bv.Timestamp.UTC().Format(timeLayout))
	return err
}

func (s *Store) count(ctx context.Context, query string, from, to string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query, from, to).Scan(&n)
	return n, err
}

func (s *Store) dimension(ctx context.Context, column, table string, from, to string, limit int) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM `+table+`
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY `+column+` ORDER BY COUNT(*) DESC, `+column+` LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) dailyViews(ctx context.Context, from, to string) ([]DailyView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS day, COUNT(*) FROM visits
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DailyView{}
	for rows.Next() {
		var d DailyView
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetStats returns aggregated statistics for [from, to). The queries run
// concurrently; the first failure is returned.
func (s *Store) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	f, t := from.UTC().Format(timeLayout), to.UTC().Format(timeLayout)
	stats := &Stats{
		Period: from.UTC().Format("2006-01-02") + " to " + to.UTC().Format("2006-01-02"),
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				mu.Unlock()
			}
		}()
	}
	dim := func(name string, dst *[]DimensionStat, column, table string, limit int) {
		run(name, func() error {
			res, err := s.dimension(ctx, column, table, f, t, limit)
			if err != nil {
				return err
			}
			mu.Lock()
			*dst = res
			mu.Unlock()
			return nil
		})
	}

	run("count views", func() error {
		n, err := s.count(ctx, `SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp < ?`, f, t)
		mu.Lock()
		stats.TotalViews = n
		mu.Unlock()
		return err
	})
	run("count unique visitors", func() error {
		n, err := s.count(ctx, `SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ? AND timestamp < ?`, f, t)
		mu.Lock()
		stats.UniqueVisitors = n
		mu.Unlock()
		return err
	})
	run("count bot visits", func() error {
		n, err := s.count(ctx, `SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`, f, t)
		mu.Lock()
		stats.BotVisits = n
		mu.Unlock()
		return err
	})
	run("top pages", func() error {
		res, err := s.dimension(ctx, "path", "visits", f, t, 10)
		if err != nil {
			return err
		}
		pages := make([]PageStat, len(res))
		for i, r := range res {
			pages[i] = PageStat{Path: r.Name, Views: r.Count}
		}
		mu.Lock()
		stats.TopPages = pages
		mu.Unlock()
		return nil
	})
	dim("browser stats", &stats.BrowserStats, "browser", "visits", 10)
	dim("os stats", &stats.OSStats, "os", "visits", 10)
	dim("device stats", &stats.DeviceStats, "device", "visits", 10)
	dim("referrer stats", &stats.ReferrerStats, "referrer", "visits", 10)
	dim("top bots", &stats.TopBots, "bot_name", "bot_visits", 10)
	run("daily views", func() error {
		res, err := s.dailyViews(ctx, f, t)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.DailyViews = res
		mu.Unlock()
		return nil
	})

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return stats, nil
}

// CleanupOldVisits removes visits and bot visits older than retention.
func (s *Store) CleanupOldVisits(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention).Format(timeLayout)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs CleanupOldVisits every interval until the
// returned stop function is called.
func (s *Store) StartCleanupScheduler(retention, interval time.Duration, log zerolog.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(context.Background(), retention); err != nil {
					log.Error().Err(err).Msg("analytics cleanup failed")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
