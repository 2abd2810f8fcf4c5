package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"stockroom/internal/infra/repository"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{
		pool: pool,
	}
}

// ReadCommitted is enough: unit claims are per-row CAS updates, so two
// concurrent reserves can never both claim the same unit.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, newPgTx(pgxTx)); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, newPgTx(pgxTx))
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// Mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx pgx.Tx

	// Lazy-initialized repositories
	cartRepo  shared.CartRepository
	unitRepo  shared.UnitRepository
	holdRepo  shared.HoldRepository
	orderRepo shared.OrderRepository
}

func newPgTx(tx pgx.Tx) *pgTx {
	return &pgTx{dbtx: tx}
}

func (t *pgTx) Carts() shared.CartRepository {
	if t.cartRepo == nil {
		t.cartRepo = repository.NewCartRepository(t.dbtx)
	}
	return t.cartRepo
}

func (t *pgTx) Units() shared.UnitRepository {
	if t.unitRepo == nil {
		t.unitRepo = repository.NewUnitRepository(t.dbtx)
	}
	return t.unitRepo
}

func (t *pgTx) Holds() shared.HoldRepository {
	if t.holdRepo == nil {
		t.holdRepo = repository.NewHoldRepository(t.dbtx)
	}
	return t.holdRepo
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository(t.dbtx)
	}
	return t.orderRepo
}
