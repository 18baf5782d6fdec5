package pg

import (
	"context"
	"log"
	"time"

	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct{ pool *pgxpool.Pool }

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats devuelve un snapshot del estado del pool (puede ser nil si el pool no está inicializado).
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Config tuning opcional del pool.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}

	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 5
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Non-blocking startup: try to ping, but don't fail if it fails.
	// This allows the app to start even if DB is temporarily down.
	if err := pool.Ping(ctx); err != nil {
		log.Printf(`{"level":"warn","msg":"pg_pool_startup_ping_failed","err":"%v"}`, err)
	} else {
		log.Printf(`{"level":"info","msg":"pg_pool_ready","max_conns":%d}`, pcfg.MaxConns)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// ====================== CLUSTERS ======================

func (s *Store) GetCluster(ctx context.Context, id uuid.UUID) (*core.Cluster, error) {
	var pk []byte
	err := s.pool.QueryRow(ctx,
		`SELECT public_key FROM clusters WHERE cluster_id = $1`, id,
	).Scan(&pk)
	if err != nil {
		if isNoRows(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &core.Cluster{ID: id, PublicKey: pk}, nil
}

// AddCluster inserta con ON CONFLICT DO NOTHING: la unicidad del índice
// resuelve escritores concurrentes sin lock de aplicación.
func (s *Store) AddCluster(ctx context.Context, c *core.Cluster) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO clusters (cluster_id, public_key) VALUES ($1, $2)
		 ON CONFLICT (cluster_id) DO NOTHING`,
		c.ID, c.PublicKey,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ====================== NODE REGISTRATIONS ======================

func (s *Store) AddRegistration(ctx context.Context, r *core.NodeRegistration) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO node_registrations
		   (cluster_id, version_name, version_number, encrypted_payload, server_timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		r.ClusterID, r.VersionName, r.VersionNumber, r.EncryptedPayload, r.ServerTimestamp,
	).Scan(&r.ID)
}

func (s *Store) GetRegistrations(ctx context.Context, g core.Group, max int) ([]core.NodeRegistration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, encrypted_payload, server_timestamp
		   FROM node_registrations
		  WHERE cluster_id = $1 AND version_name = $2 AND version_number = $3
		  ORDER BY server_timestamp DESC, id DESC
		  LIMIT $4`,
		g.ClusterID, g.VersionName, g.VersionNumber, max,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.NodeRegistration
	for rows.Next() {
		r := core.NodeRegistration{
			ClusterID:     g.ClusterID,
			VersionName:   g.VersionName,
			VersionNumber: g.VersionNumber,
		}
		if err := rows.Scan(&r.ID, &r.EncryptedPayload, &r.ServerTimestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EvictRegistrations: borrado por conjunto, conserva las maxPerGroup más
// nuevas (server_timestamp desc, empate por id desc).
func (s *Store) EvictRegistrations(ctx context.Context, g core.Group, maxPerGroup int) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM node_registrations
		  WHERE id IN (
		        SELECT id FROM node_registrations
		         WHERE cluster_id = $1 AND version_name = $2 AND version_number = $3
		         ORDER BY server_timestamp DESC, id DESC
		         OFFSET $4
		  )`,
		g.ClusterID, g.VersionName, g.VersionNumber, maxPerGroup,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
