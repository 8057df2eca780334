package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"portfolio_aggregator/internal/domain/entity"
)

// Store persists tracked wallets and settings in SQLite. It implements port.WalletStore.
type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS wallets (
  address TEXT PRIMARY KEY,
  added_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wallets_added ON wallets(added_at_ms);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at_ms INTEGER NOT NULL
);
`)
	return err
}

// ListWallets returns wallets in the order they were added.
func (s *Store) ListWallets(ctx context.Context) ([]entity.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT address, added_at_ms FROM wallets ORDER BY added_at_ms, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := []entity.Wallet{}
	for rows.Next() {
		var w entity.Wallet
		var addedAt int64
		if err := rows.Scan(&w.Address, &addedAt); err != nil {
			return nil, err
		}
		w.AddedAt = time.UnixMilli(addedAt).UTC()
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// AddWallet inserts w and reports whether a row was written. Adding an address twice
// leaves the first row untouched and returns false.
func (s *Store) AddWallet(ctx context.Context, w entity.Wallet) (bool, error) {
	addedAt := w.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO wallets(address, added_at_ms) VALUES(?, ?) ON CONFLICT(address) DO NOTHING`,
		w.Address, addedAt.UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

func (s *Store) RemoveWallet(ctx context.Context, address string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM wallets WHERE address = ?`, address)
	return err
}

func (s *Store) HasWallet(ctx context.Context, address string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM wallets WHERE address = ?`, address).Scan(&n)
	return n > 0, err
}

// GetSetting returns the value stored under key and whether it exists.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings(key, value, updated_at_ms) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at_ms = excluded.updated_at_ms
`, key, value, time.Now().UnixMilli())
	return err
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
