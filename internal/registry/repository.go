package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Repository persists entities.
type Repository interface {
	// List returns every entity, ordered by identifier.
	List(ctx context.Context) ([]Entity, error)

	// Insert stores entities atomically. It fails with ErrEntityExists if
	// any identifier is taken, and stores none of them.
	Insert(ctx context.Context, entities []Entity) error

	// Delete removes one entity. It returns ErrEntityNotFound if missing.
	Delete(ctx context.Context, identifier string) error
}

// SQLiteRepository implements Repository over the entities table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectEntities = `
	SELECT identifier, namespace, scope_id, device_group, key, category, name,
		unit, device_class, state_class, enabled, created_at
	FROM entities`

// List implements Repository.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entity, error) {
	return r.query(ctx, selectEntities+" ORDER BY identifier")
}

// Insert implements Repository.
func (r *SQLiteRepository) Insert(ctx context.Context, entities []Entity) error {
	if len(entities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (
			identifier, namespace, scope_id, device_group, key, category, name,
			unit, device_class, state_class, enabled, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return err
		}
		_, err := stmt.ExecContext(ctx,
			e.Identifier,
			e.Namespace,
			e.ScopeID,
			e.Group,
			e.Key,
			e.Category,
			e.Name,
			e.Unit,
			e.DeviceClass,
			e.StateClass,
			boolToInt(e.Enabled),
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("%w: %s", ErrEntityExists, e.Identifier)
			}
			return fmt.Errorf("inserting entity %s: %w", e.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entities: %w", err)
	}
	return nil
}

// Delete implements Repository.
func (r *SQLiteRepository) Delete(ctx context.Context, identifier string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entities WHERE identifier = ?", identifier)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return ErrEntityNotFound
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var (
			e       Entity
			enabled int
			created string
		)
		if err := rows.Scan(
			&e.Identifier,
			&e.Namespace,
			&e.ScopeID,
			&e.Group,
			&e.Key,
			&e.Category,
			&e.Name,
			&e.Unit,
			&e.DeviceClass,
			&e.StateClass,
			&enabled,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		e.Enabled = enabled != 0
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isConstraintError reports a primary key or unique violation.
func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
