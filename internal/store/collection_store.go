package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/artcatalog/internal/domain"
)

type CollectionStore struct {
	db *sql.DB
}

func NewCollectionStore(db *sql.DB) *CollectionStore {
	return &CollectionStore{db: db}
}

// Create inserts a collection. A clash on the removal number index is reported
// as domain.ErrDuplicateRemovalNumber.
func (s *CollectionStore) Create(ctx context.Context, clientName, removalNumber string) (*domain.Collection, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (client_name, removal_number) VALUES (?, ?)
	`, clientName, removalNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRemovalNumber, removalNumber)
		}
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *CollectionStore) GetByID(ctx context.Context, id int64) (*domain.Collection, error) {
	c := &domain.Collection{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, client_name, removal_number, created_at FROM collections WHERE id = ?
	`, id).Scan(&c.ID, &c.ClientName, &c.RemovalNumber, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return c, nil
}

func (s *CollectionStore) GetByRemovalNumber(ctx context.Context, removalNumber string) (*domain.Collection, error) {
	c := &domain.Collection{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, client_name, removal_number, created_at FROM collections WHERE removal_number = ?
	`, removalNumber).Scan(&c.ID, &c.ClientName, &c.RemovalNumber, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection by removal number: %w", err)
	}

	return c, nil
}

// List returns collections newest first.
func (s *CollectionStore) List(ctx context.Context) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_name, removal_number, created_at FROM collections
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var collections []*domain.Collection
	for rows.Next() {
		c := &domain.Collection{}
		if err := rows.Scan(&c.ID, &c.ClientName, &c.RemovalNumber, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	return collections, nil
}

func (s *CollectionStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM collections WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("collection %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
