package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
)

// Cart items persist the price they were last seen at. The core reprices them
// from the catalog on every read; the stored price is the fallback for lines
// whose toy has since vanished.

func (s *OrderStore) GetCart(ctx context.Context, ownerID int64) (*models.Cart, error) {
	cart := &models.Cart{}

	query := `
		SELECT id, owner_id, created_at, updated_at
		FROM carts
		WHERE owner_id = $1`

	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(
		&cart.ID,
		&cart.OwnerID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	items, err := s.loadCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

func (s *OrderStore) loadCartItems(ctx context.Context, cartID int64) ([]models.LineItem, error) {
	query := `
		SELECT id, toy_id, kind, rent_duration, quantity, unit_price, line_total
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		err := rows.Scan(
			&item.ID,
			&item.ToyID,
			&item.Kind,
			&item.RentDuration,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// SaveCart upserts the cart row and replaces its items in one transaction,
// assigning fresh line ids to new items.
func (s *OrderStore) SaveCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	saved := &models.Cart{OwnerID: cart.OwnerID}

	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO carts (owner_id, created_at, updated_at)
			 VALUES ($1, NOW(), NOW())
			 ON CONFLICT (owner_id) DO UPDATE SET updated_at = NOW()
			 RETURNING id, created_at, updated_at`,
			cart.OwnerID).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1`, saved.ID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}

		for _, item := range cart.Items {
			line := item
			err := tx.QueryRowContext(ctx,
				`INSERT INTO cart_items (cart_id, toy_id, kind, rent_duration, quantity,
					unit_price, line_total, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
				 RETURNING id`,
				saved.ID, item.ToyID, item.Kind, item.RentDuration, item.Quantity,
				item.UnitPrice, item.LineTotal).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
			saved.Items = append(saved.Items, line)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return saved, nil
}
