package clickhouse

import (
	"context"
	"fmt"
	"time"

	"trading-journal/internal/domain"
	"trading-journal/internal/storage"
)

// MetricSnapshotStore implements storage.MetricSnapshotStore using ClickHouse.
type MetricSnapshotStore struct {
	conn *Conn
}

// NewMetricSnapshotStore creates a new MetricSnapshotStore.
func NewMetricSnapshotStore(conn *Conn) *MetricSnapshotStore {
	return &MetricSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MetricSnapshotStore = (*MetricSnapshotStore)(nil)

const selectSnapshotColumns = `
	SELECT
		snapshot_id, user_id, computed_at_ms,
		total_trades, closed_trades, open_trades, wins, losses,
		net_pnl, win_rate, profit_factor, expectancy, average_win, average_loss,
		max_drawdown, avg_drawdown, recovery_factor, risk_of_ruin, kelly_percent,
		max_consecutive_losses, r_multiple,
		ratio_periods, ratios_insufficient,
		sharpe_ratio, sortino_ratio, calmar_ratio, treynor_ratio, jensens_alpha
	FROM metric_snapshots FINAL
`

// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
func (s *MetricSnapshotStore) Insert(ctx context.Context, snap *domain.MetricSnapshot) (err error) {
	if snap == nil || snap.SnapshotID == "" || snap.UserID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("snapshot_insert", start, err) }(time.Now())

	// Check if exists (ReplacingMergeTree will replace, but we want append-only semantics)
	exists, err := s.exists(ctx, snap.SnapshotID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO metric_snapshots (
			snapshot_id, user_id, computed_at_ms,
			total_trades, closed_trades, open_trades, wins, losses,
			net_pnl, win_rate, profit_factor, expectancy, average_win, average_loss,
			max_drawdown, avg_drawdown, recovery_factor, risk_of_ruin, kelly_percent,
			max_consecutive_losses, r_multiple,
			ratio_periods, ratios_insufficient,
		sharpe_ratio, sortino_ratio, calmar_ratio, treynor_ratio, jensens_alpha
		) VALUES (
			?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?,
			?, ?,
			?, ?, ?, ?, ?
		)
	`

	err = s.conn.Exec(ctx, query,
		snap.SnapshotID, snap.UserID, snap.ComputedAtMs,
		int64(snap.TotalTrades), int64(snap.ClosedTrades), int64(snap.OpenTrades),
		int64(snap.Wins), int64(snap.Losses),
		snap.NetPnL, snap.WinRate, snap.ProfitFactor, snap.Expectancy, snap.AverageWin, snap.AverageLoss,
		snap.MaxDrawdown, snap.AvgDrawdown, snap.RecoveryFactor, snap.RiskOfRuin, snap.KellyPercent,
		int64(snap.MaxConsecutiveLosses), snap.RMultiple,
		int64(snap.RatioPeriods), snap.RatiosInsufficient,
		snap.SharpeRatio, snap.SortinoRatio, snap.CalmarRatio, snap.TreynorRatio, snap.JensensAlpha,
	)
	if err != nil {
		return fmt.Errorf("insert metric snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot for a user. Returns ErrNotFound if none.
func (s *MetricSnapshotStore) GetLatest(ctx context.Context, userID string) (_ *domain.MetricSnapshot, err error) {
	defer func(start time.Time) { observe("snapshot_get_latest", start, err) }(time.Now())

	query := selectSnapshotColumns + `
		WHERE user_id = ?
		ORDER BY computed_at_ms DESC, snapshot_id DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return snaps[0], nil
}

// GetByUser retrieves all snapshots for a user, ordered by computed_at ASC.
func (s *MetricSnapshotStore) GetByUser(ctx context.Context, userID string) (_ []*domain.MetricSnapshot, err error) {
	defer func(start time.Time) { observe("snapshot_get_by_user", start, err) }(time.Now())

	query := selectSnapshotColumns + `
		WHERE user_id = ?
		ORDER BY computed_at_ms ASC, snapshot_id ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by user: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given ID exists.
func (s *MetricSnapshotStore) exists(ctx context.Context, snapshotID string) (bool, error) {
	query := `SELECT count(*) FROM metric_snapshots FINAL WHERE snapshot_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, snapshotID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSnapshots scans multiple rows into a slice.
func scanSnapshots(rows chRows) ([]*domain.MetricSnapshot, error) {
	var snaps []*domain.MetricSnapshot

	for rows.Next() {
		var (
			m                    domain.MetricSnapshot
			total, closed, open  int64
			wins, losses         int64
			maxConsecutiveLosses int64
			ratioPeriods         int64
		)
		err := rows.Scan(
			&m.SnapshotID, &m.UserID, &m.ComputedAtMs,
			&total, &closed, &open, &wins, &losses,
			&m.NetPnL, &m.WinRate, &m.ProfitFactor, &m.Expectancy, &m.AverageWin, &m.AverageLoss,
			&m.MaxDrawdown, &m.AvgDrawdown, &m.RecoveryFactor, &m.RiskOfRuin, &m.KellyPercent,
			&maxConsecutiveLosses, &m.RMultiple,
			&ratioPeriods, &m.RatiosInsufficient,
			&m.SharpeRatio, &m.SortinoRatio, &m.CalmarRatio, &m.TreynorRatio, &m.JensensAlpha,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		m.TotalTrades = int(total)
		m.ClosedTrades = int(closed)
		m.OpenTrades = int(open)
		m.Wins = int(wins)
		m.Losses = int(losses)
		m.MaxConsecutiveLosses = int(maxConsecutiveLosses)
		m.RatioPeriods = int(ratioPeriods)
		snaps = append(snaps, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}
