package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    text        PRIMARY KEY,
    name       text        NOT NULL,
    applied_at timestamptz NOT NULL DEFAULT now()
)`

// Runner ejecuta migraciones contra postgres. Cada versión corre en una
// transacción junto con su fila del ledger: o queda aplicada y registrada,
// o ninguna de las dos.
type Runner struct {
	pool *pgxpool.Pool

	// Logf recibe el progreso (una línea por versión). Opcional.
	Logf func(format string, args ...any)
}

func NewRunner(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Runner) ensureLedger(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, ledgerDDL)
	return err
}

// Applied devuelve las versiones registradas en el ledger.
func (r *Runner) Applied(ctx context.Context) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// Up aplica las migraciones pendientes en orden. steps > 0 acota cuántas.
// Devuelve cuántas corrió; re-ejecutar con el ledger al día es un no-op.
func (r *Runner) Up(ctx context.Context, dir string, steps int) (int, error) {
	if err := r.ensureLedger(ctx); err != nil {
		return 0, fmt.Errorf("ledger: %w", err)
	}
	migs, err := Load(dir)
	if err != nil {
		return 0, err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return 0, err
	}

	plan := Pending(migs, applied, steps)
	for i, m := range plan {
		if err := r.applyUp(ctx, m); err != nil {
			return i, fmt.Errorf("up %s_%s: %w", m.Version, m.Name, err)
		}
	}
	return len(plan), nil
}

// Down revierte migraciones aplicadas, de la más nueva a la más vieja.
// steps > 0 acota cuántas. Devuelve cuántas revirtió.
func (r *Runner) Down(ctx context.Context, dir string, steps int) (int, error) {
	if err := r.ensureLedger(ctx); err != nil {
		return 0, fmt.Errorf("ledger: %w", err)
	}
	migs, err := Load(dir)
	if err != nil {
		return 0, err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return 0, err
	}

	plan, err := Rollback(migs, applied, steps)
	if err != nil {
		return 0, err
	}
	for i, m := range plan {
		if err := r.applyDown(ctx, m); err != nil {
			return i, fmt.Errorf("down %s_%s: %w", m.Version, m.Name, err)
		}
	}
	return len(plan), nil
}

func (r *Runner) applyUp(ctx context.Context, m Migration) error {
	sql, err := os.ReadFile(m.UpPath)
	if err != nil {
		return err
	}

	start := time.Now()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
		m.Version, m.Name,
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logf("OK up %s (%s)", filepath.Base(m.UpPath), time.Since(start).Truncate(time.Millisecond))
	return nil
}

func (r *Runner) applyDown(ctx context.Context, m Migration) error {
	sql, err := os.ReadFile(m.DownPath)
	if err != nil {
		return err
	}

	start := time.Now()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM schema_migrations WHERE version = $1`, m.Version,
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logf("OK down %s (%s)", filepath.Base(m.DownPath), time.Since(start).Truncate(time.Millisecond))
	return nil
}
