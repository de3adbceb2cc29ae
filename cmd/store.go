package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/config"
	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
	"github.com/qrave1/RoomSignal/internal/infra/adapters/memory"
	"github.com/qrave1/RoomSignal/internal/infra/adapters/sqlstore"
)

// sweepableStore - хранилище, из которого можно выметать протухшие ключи.
type sweepableStore interface {
	ports.TTLStore
	Sweep(ctx context.Context) (int, error)
}

// openStore выбирает хранилище по STORE_DRIVER. closeFn закрывает соединение с базой.
func openStore(ctx context.Context, cfg *config.Config, clk clock.Clock) (sweepableStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return memory.NewTTLStore(clk), func() {}, nil

	case config.StorePostgres:
		db, err := sqlstore.NewPostgres(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, err
		}

		return sqlstore.NewTTLStore(db, clk), func() { _ = db.Close() }, nil

	case config.StoreSQLite:
		db, err := sqlstore.NewSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		// файл базы локальный, схему накатываем сразу
		if err := sqlstore.Migrate(ctx, db.DB, sqlstore.DriverSQLite, "up"); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return sqlstore.NewTTLStore(db, clk), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// runSweeper периодически удаляет протухшие ключи, пока ctx не отменен.
func runSweeper(ctx context.Context, store sweepableStore, clk clock.Clock, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Sweep(ctx)
			if err != nil {
				slog.Warn("sweep expired keys", slog.Any(constant.Error, err))
				continue
			}

			if removed > 0 {
				slog.Debug("swept expired keys", slog.Int("removed", removed))
			}
		}
	}
}
