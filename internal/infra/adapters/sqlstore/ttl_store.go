package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

// TTLStore хранит ключи в таблице kv. Работает и на Postgres (pgx), и на
// SQLite: запросы пишутся с ? и переводятся через Rebind.
type TTLStore struct {
	db    *sqlx.DB
	clock clock.Clock
}

var _ ports.TTLStore = (*TTLStore)(nil)

func NewTTLStore(db *sqlx.DB, clk clock.Clock) *TTLStore {
	return &TTLStore{db: db, clock: clk}
}

func (s *TTLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string

	err := s.db.GetContext(
		ctx,
		&value,
		s.db.Rebind("SELECT value FROM kv WHERE key = ? AND expires_at > ?"),
		key,
		s.now(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}

	return []byte(value), nil
}

func (s *TTLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(
		ctx,
		s.db.Rebind(`
			INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
		`),
		key,
		string(value),
		s.expiresAt(ttl),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}

	return nil
}

func (s *TTLStore) CompareAndSwap(ctx context.Context, key string, old, value []byte, ttl time.Duration) (bool, error) {
	var (
		res sql.Result
		err error
	)

	if old == nil {
		// Вставка проходит, если ключа нет или он уже истек
		res, err = s.db.ExecContext(
			ctx,
			s.db.Rebind(`
				INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
				WHERE kv.expires_at <= ?
			`),
			key,
			string(value),
			s.expiresAt(ttl),
			s.now(),
		)
	} else {
		res, err = s.db.ExecContext(
			ctx,
			s.db.Rebind("UPDATE kv SET value = ?, expires_at = ? WHERE key = ? AND value = ? AND expires_at > ?"),
			string(value),
			s.expiresAt(ttl),
			key,
			string(old),
			s.now(),
		)
	}
	if err != nil {
		return false, fmt.Errorf("compare and swap %s: %w", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}

// Sweep удаляет истекшие строки и возвращает их количество.
func (s *TTLStore) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM kv WHERE expires_at <= ?"), s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(affected), nil
}

func (s *TTLStore) now() int64 {
	return s.clock.Now().UnixMilli()
}

func (s *TTLStore) expiresAt(ttl time.Duration) int64 {
	return s.clock.Now().Add(ttl).UnixMilli()
}
