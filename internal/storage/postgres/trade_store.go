package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"trading-journal/internal/domain"
	"trading-journal/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO trades (
		trade_id, user_id, account_id,
		symbol, direction, market_type,
		entry_price, exit_price, quantity, stop_loss, take_profit, fees,
		entry_time_ms, exit_time_ms, notes,
		broker_platform, broker_ticket, broker_magic,
		created_at_ms
	) VALUES (
		$1, $2, $3,
		$4, $5, $6,
		$7, $8, $9, $10, $11, $12,
		$13, $14, $15,
		$16, $17, $18,
		$19
	)
`

const selectTradeColumns = `
	SELECT
		trade_id, user_id, account_id,
		symbol, direction, market_type,
		entry_price, exit_price, quantity, stop_loss, take_profit, fees,
		entry_time_ms, exit_time_ms, notes,
		broker_platform, broker_ticket, broker_magic,
		created_at_ms
	FROM trades
`

func tradeArgs(t *domain.Trade) []any {
	var (
		platform *string
		ticket   string
		magic    *int64
	)
	if t.Broker != nil {
		platform = &t.Broker.Platform
		ticket = t.Broker.Ticket
		magic = t.Broker.Magic
	}

	return []any{
		t.TradeID, t.UserID, t.AccountID,
		t.Symbol, string(t.Direction), string(t.MarketType),
		t.EntryPrice, t.ExitPrice, t.Quantity, t.StopLoss, t.TakeProfit, t.Fees,
		t.EntryTimeMs, t.ExitTimeMs, t.Notes,
		platform, ticket, magic,
		t.CreatedAtMs,
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) (err error) {
	defer func(start time.Time) { observe("trade_insert", start, err) }(time.Now())

	if t == nil || t.TradeID == "" || t.UserID == "" {
		return storage.ErrInvalidInput
	}

	_, err = s.pool.Exec(ctx, insertTradeQuery, tradeArgs(t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) (err error) {
	if len(trades) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("trade_insert_bulk", start, err) }(time.Now())

	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.UserID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if _, err := tx.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (_ *domain.Trade, err error) {
	defer func(start time.Time) { observe("trade_get", start, err) }(time.Now())

	query := selectTradeColumns + `WHERE trade_id = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, tradeID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade: %w", err)
	}
	return t, nil
}

// GetByUser retrieves all trades for a user, ordered by created_at ASC, trade_id ASC.
func (s *TradeStore) GetByUser(ctx context.Context, userID string) (_ []*domain.Trade, err error) {
	defer func(start time.Time) { observe("trade_get_by_user", start, err) }(time.Now())

	query := selectTradeColumns + `
		WHERE user_id = $1
		ORDER BY created_at_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get trades by user: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// ListUserIDs returns the distinct user IDs that own at least one trade, sorted ASC.
func (s *TradeStore) ListUserIDs(ctx context.Context) (_ []string, err error) {
	defer func(start time.Time) { observe("trade_list_users", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT user_id FROM trades ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user id rows: %w", err)
	}
	return ids, nil
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var (
		t          domain.Trade
		direction  string
		marketType string
		platform   *string
		ticket     string
		magic      *int64
	)

	err := row.Scan(
		&t.TradeID, &t.UserID, &t.AccountID,
		&t.Symbol, &direction, &marketType,
		&t.EntryPrice, &t.ExitPrice, &t.Quantity, &t.StopLoss, &t.TakeProfit, &t.Fees,
		&t.EntryTimeMs, &t.ExitTimeMs, &t.Notes,
		&platform, &ticket, &magic,
		&t.CreatedAtMs,
	)
	if err != nil {
		return nil, err
	}

	t.Direction = domain.Direction(direction)
	t.MarketType = domain.MarketType(marketType)
	if platform != nil {
		t.Broker = &domain.BrokerMetadata{
			Platform: *platform,
			Ticket:   ticket,
			Magic:    magic,
		}
	}

	return &t, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
