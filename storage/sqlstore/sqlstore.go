// Package sqlstore implements the relational EntityType registry R: an
// admin-curated, open ontology of entity types distinct from the closed
// vocabulary/knowcore enums, needing relational uniqueness and transactional
// approve/reject that the NATS KV-backed storage.Store cannot express.
// Grounded on MrWong99-glyphoxa's pkg/memory/postgres/store.go pool
// lifecycle and Migrate pattern. Library: github.com/jackc/pgx/v5/pgxpool.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/c360studio/knowcore/domain"
)

// Store is the PostgreSQL-backed EntityType registry.
type Store struct {
	pool *pgxpool.Pool
}

// New dials postgres, pings it, and runs Migrate.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the entity_types table and its supporting normalization-
// undo snapshot table if they do not already exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS entity_types (
			id           BIGSERIAL PRIMARY KEY,
			name         TEXT NOT NULL UNIQUE,
			description  TEXT NOT NULL DEFAULT '',
			approved     BOOLEAN NOT NULL DEFAULT false,
			proposed_by  TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS normalization_snapshots (
			id           BIGSERIAL PRIMARY KEY,
			merged_name  TEXT NOT NULL,
			survivor_name TEXT NOT NULL,
			snapshot     JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at   TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Propose inserts a new, unapproved EntityType row — the admin-curation
// ontology's write path for an LLM-assisted or operator-submitted proposal.
func (s *Store) Propose(ctx context.Context, name, description, proposedBy string) (domain.EntityType, error) {
	var et domain.EntityType
	err := s.pool.QueryRow(ctx, `
		INSERT INTO entity_types (name, description, approved, proposed_by)
		VALUES ($1, $2, false, $3)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id, name, description, approved, proposed_by, created_at
	`, name, description, proposedBy).Scan(&et.ID, &et.Name, &et.Description, &et.Approved, &et.ProposedBy, &et.CreatedAt)
	if err != nil {
		return domain.EntityType{}, fmt.Errorf("sqlstore: propose %q: %w", name, err)
	}
	return et, nil
}

// Approve marks an EntityType row approved, atomically.
func (s *Store) Approve(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE entity_types SET approved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: approve %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sqlstore: entity type %d not found", id)
	}
	return nil
}

// Reject deletes an unapproved EntityType row.
func (s *Store) Reject(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entity_types WHERE id = $1 AND approved = false`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: reject %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sqlstore: entity type %d not found or already approved", id)
	}
	return nil
}

// List returns every registered EntityType, approved or not.
func (s *Store) List(ctx context.Context) ([]domain.EntityType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, approved, proposed_by, created_at FROM entity_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list: %w", err)
	}
	defer rows.Close()

	var out []domain.EntityType
	for rows.Next() {
		var et domain.EntityType
		if err := rows.Scan(&et.ID, &et.Name, &et.Description, &et.Approved, &et.ProposedBy, &et.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scan row: %w", err)
		}
		out = append(out, et)
	}
	return out, rows.Err()
}

// NormalizationUndoWindow is how long a merge's pre-image snapshot remains
// restorable before it is eligible for cleanup.
const NormalizationUndoWindow = 24 * time.Hour

// SnapshotMerge records a merge's pre-image for undo within
// NormalizationUndoWindow, inside a transaction with the merge itself so a
// snapshot never exists without its corresponding merge having committed.
func (s *Store) SnapshotMerge(ctx context.Context, mergedName, survivorName string, snapshotJSON []byte, applyMerge func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO normalization_snapshots (merged_name, survivor_name, snapshot, expires_at)
		VALUES ($1, $2, $3, now() + make_interval(hours => $4))
	`, mergedName, survivorName, snapshotJSON, int(NormalizationUndoWindow.Hours())); err != nil {
		return fmt.Errorf("sqlstore: insert snapshot: %w", err)
	}

	if err := applyMerge(tx); err != nil {
		return fmt.Errorf("sqlstore: apply merge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("sqlstore: commit merge+snapshot: %w", err)
	}
	return nil
}
