package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
)

// OrderStore persists carts, orders, requests and transaction records.
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func generateOrderNumber() string {
	return "ORD-" + uuid.NewString()
}

// CreateOrder inserts the order with its items, decrements toy inventory and
// empties the owner's cart, all in one serializable transaction. The cart is
// therefore never left re-playable into a second order.
func (s *OrderStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	var created *models.Order

	err := database.WithRetry(ctx, s.db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		orderNumber := generateOrderNumber()
		var orderID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_number, owner_id, owner_name,
				street, city, state, postal_code, country,
				transaction_type, total_amount, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
			 RETURNING id`,
			orderNumber, order.OwnerID, order.OwnerName,
			order.ShippingAddress.Street, order.ShippingAddress.City,
			order.ShippingAddress.State, order.ShippingAddress.PostalCode,
			order.ShippingAddress.Country,
			order.TransactionType, order.TotalAmount, order.Status).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range order.Items {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, toy_id, toy_name, kind,
					rent_duration, quantity, unit_price, line_total, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
				orderID, item.ToyID, item.ToyName, item.Kind,
				item.RentDuration, item.Quantity, item.UnitPrice, item.LineTotal)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		for _, item := range order.Items {
			result, err := tx.ExecContext(ctx,
				`UPDATE toys
				 SET inventory_count = inventory_count - $1,
				     updated_at = NOW()
				 WHERE id = $2
				   AND inventory_count >= $1`,
				item.Quantity, item.ToyID)
			if err != nil {
				return fmt.Errorf("update inventory: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return database.ErrInsufficientStock
			}
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM cart_items
			 WHERE cart_id IN (SELECT id FROM carts WHERE owner_id = $1)`,
			order.OwnerID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		created, err = getOrderTx(ctx, tx, orderID)
		return err
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}

const orderColumns = `id, order_number, owner_id, owner_name,
	street, city, state, postal_code, country,
	transaction_type, total_amount, status, created_at, updated_at, approved_at`

func scanOrder(row interface{ Scan(...interface{}) error }, order *models.Order) error {
	var approvedAt sql.NullTime
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.OwnerID,
		&order.OwnerName,
		&order.ShippingAddress.Street,
		&order.ShippingAddress.City,
		&order.ShippingAddress.State,
		&order.ShippingAddress.PostalCode,
		&order.ShippingAddress.Country,
		&order.TransactionType,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&approvedAt,
	)
	if err != nil {
		return err
	}
	if approvedAt.Valid {
		order.ApprovedAt = &approvedAt.Time
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getOrderTx(ctx context.Context, q querier, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := scanOrder(q.QueryRowContext(ctx, query, id), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := loadOrderItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func loadOrderItems(ctx context.Context, q querier, orderID int64) ([]models.LineItem, error) {
	query := `
		SELECT id, toy_id, toy_name, kind, rent_duration, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		err := rows.Scan(
			&item.ID,
			&item.ToyID,
			&item.ToyName,
			&item.Kind,
			&item.RentDuration,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return getOrderTx(ctx, s.db, id)
}

// ListOrders pages through every order newest-first using a keyset cursor.
func (s *OrderStore) ListOrders(ctx context.Context, cursor string, limit int) ([]models.Order, string, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, "", fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	for i := range orders {
		items, err := loadOrderItems(ctx, s.db, orders[i].ID)
		if err != nil {
			return nil, "", err
		}
		orders[i].Items = items
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return orders, nextCursor, nil
}

// UpdateOrderStatus is a compare-and-set against the pending state; a second
// concurrent approval finds zero rows and reports the order already decided.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, approved_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		status, id, models.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", id).Scan(&exists)
		if checkErr == nil && !exists {
			return nil, database.ErrOrderNotFound
		}
		return nil, database.ErrAlreadyDecided
	}

	return getOrderTx(ctx, s.db, id)
}
