package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Expedientes-api/internal/application/expediente"
	"github.com/jhoicas/Expedientes-api/internal/domain/repository"
)

var _ expediente.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReview inicia una transacción con repos de expedientes y revisiones (para RevisarFinanciera).
func (r *TxRunner) RunReview(ctx context.Context, fn func(
	expRepo repository.ExpedienteRepository,
	revisionRepo repository.RevisionFinancieraRepository,
) error) error {
	return r.Run(ctx, func(tx pgx.Tx) error {
		return fn(NewExpedienteRepository(tx), NewRevisionRepository(tx))
	})
}
