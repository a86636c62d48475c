package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
)

// CatalogStore is the postgres-backed toy catalog.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const toyColumns = `id, supplier_id, name, category, description, image_url,
	inventory_count, availability, is_rentable, is_saleable,
	price_day, price_week, price_two_weeks, fixed_price,
	created_at, updated_at, version`

func scanToy(row interface{ Scan(...interface{}) error }, toy *models.Toy) error {
	return row.Scan(
		&toy.ID,
		&toy.SupplierID,
		&toy.Name,
		&toy.Category,
		&toy.Description,
		&toy.ImageURL,
		&toy.InventoryCount,
		&toy.Availability,
		&toy.IsRentable,
		&toy.IsSaleable,
		&toy.RentalPrice.Day,
		&toy.RentalPrice.Week,
		&toy.RentalPrice.TwoWeeks,
		&toy.FixedPrice,
		&toy.CreatedAt,
		&toy.UpdatedAt,
		&toy.Version,
	)
}

func (s *CatalogStore) CreateToy(ctx context.Context, toy *models.Toy) (*models.Toy, error) {
	created := &models.Toy{}

	query := `
		INSERT INTO toys (supplier_id, name, category, description, image_url,
			inventory_count, availability, is_rentable, is_saleable,
			price_day, price_week, price_two_weeks, fixed_price,
			created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW(), 1)
		RETURNING ` + toyColumns

	err := scanToy(s.db.QueryRowContext(ctx, query,
		toy.SupplierID, toy.Name, toy.Category, toy.Description, toy.ImageURL,
		toy.InventoryCount, toy.Availability, toy.IsRentable, toy.IsSaleable,
		toy.RentalPrice.Day, toy.RentalPrice.Week, toy.RentalPrice.TwoWeeks,
		toy.FixedPrice,
	), created)
	if err != nil {
		return nil, fmt.Errorf("create toy: %w", err)
	}

	return created, nil
}

func (s *CatalogStore) GetToy(ctx context.Context, id int64) (*models.Toy, error) {
	toy := &models.Toy{}

	query := `SELECT ` + toyColumns + ` FROM toys WHERE id = $1`

	err := scanToy(s.db.QueryRowContext(ctx, query, id), toy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrToyNotFound
		}
		return nil, fmt.Errorf("get toy: %w", err)
	}

	return toy, nil
}

func (s *CatalogStore) ListToys(ctx context.Context, page, pageSize int) ([]models.Toy, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM toys`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count toys: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + toyColumns + `
		FROM toys
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list toys: %w", err)
	}
	defer rows.Close()

	var toys []models.Toy
	for rows.Next() {
		var toy models.Toy
		if err := scanToy(rows, &toy); err != nil {
			return nil, 0, fmt.Errorf("scan toy: %w", err)
		}
		toys = append(toys, toy)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return toys, total, nil
}

// UpdateToy writes a full row guarded by the optimistic version check.
func (s *CatalogStore) UpdateToy(ctx context.Context, toy *models.Toy) (*models.Toy, error) {
	updated := &models.Toy{}

	query := `
		UPDATE toys
		SET supplier_id = $1, name = $2, category = $3, description = $4,
		    image_url = $5, inventory_count = $6, availability = $7,
		    is_rentable = $8, is_saleable = $9,
		    price_day = $10, price_week = $11, price_two_weeks = $12,
		    fixed_price = $13, updated_at = NOW(), version = version + 1
		WHERE id = $14 AND version = $15
		RETURNING ` + toyColumns

	err := scanToy(s.db.QueryRowContext(ctx, query,
		toy.SupplierID, toy.Name, toy.Category, toy.Description, toy.ImageURL,
		toy.InventoryCount, toy.Availability, toy.IsRentable, toy.IsSaleable,
		toy.RentalPrice.Day, toy.RentalPrice.Week, toy.RentalPrice.TwoWeeks,
		toy.FixedPrice, toy.ID, toy.Version,
	), updated)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			checkErr := s.db.QueryRowContext(ctx,
				"SELECT EXISTS(SELECT 1 FROM toys WHERE id = $1)", toy.ID).Scan(&exists)
			if checkErr == nil && !exists {
				return nil, database.ErrToyNotFound
			}
			return nil, database.ErrOptimisticLockFailed
		}
		return nil, fmt.Errorf("update toy: %w", err)
	}

	return updated, nil
}

func (s *CatalogStore) DeleteToy(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM toys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete toy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrToyNotFound
	}

	return nil
}
