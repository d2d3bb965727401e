package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-pulse/internal/domain"
	"solana-wallet-pulse/internal/storage"
)

// TransactionArchive implements storage.TransactionArchive using ClickHouse.
// The table is a ReplacingMergeTree sorted by (token_address, timestamp,
// signature), so re-archiving an identical transaction across poll cycles
// collapses to one row at merge time.
type TransactionArchive struct {
	conn *Conn
}

// NewTransactionArchive creates a new TransactionArchive.
func NewTransactionArchive(conn *Conn) *TransactionArchive {
	return &TransactionArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.TransactionArchive = (*TransactionArchive)(nil)

// InsertBulk appends a batch of transactions.
func (s *TransactionArchive) InsertBulk(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transaction_archive (
			signature, wallet_address, token_address, token_symbol, amount, price, side, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tx := range txs {
		if tx == nil || tx.Signature == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			tx.Signature,
			tx.WalletAddress,
			tx.TokenAddress,
			tx.TokenSymbol,
			tx.Amount,
			tx.Price,
			string(tx.Side),
			tx.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTokenTimeRange returns archived transactions for a token within
// [start, end] seconds, ordered by timestamp ASC.
func (s *TransactionArchive) GetByTokenTimeRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.Transaction, error) {
	query := `
		SELECT signature, wallet_address, token_address, token_symbol, amount, price, side, timestamp
		FROM transaction_archive FINAL
		WHERE token_address = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenAddress, start, end)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var side string
		if err := rows.Scan(
			&tx.Signature,
			&tx.WalletAddress,
			&tx.TokenAddress,
			&tx.TokenSymbol,
			&tx.Amount,
			&tx.Price,
			&side,
			&tx.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan archived transaction: %w", err)
		}
		tx.Side = domain.Side(side)
		result = append(result, &tx)
	}

	return result, rows.Err()
}
