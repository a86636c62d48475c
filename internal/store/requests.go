package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/toy-market/internal/commerce"
	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
)

const requestColumns = `id, owner_id, owner_name, toy_id, toy_name, kind,
	rent_duration, quantity, unit_price, line_total, status,
	created_at, updated_at, decided_at`

func scanRequest(row interface{ Scan(...interface{}) error }, req *models.Request) error {
	var decidedAt sql.NullTime
	err := row.Scan(
		&req.ID,
		&req.OwnerID,
		&req.OwnerName,
		&req.Item.ToyID,
		&req.Item.ToyName,
		&req.Item.Kind,
		&req.Item.RentDuration,
		&req.Item.Quantity,
		&req.Item.UnitPrice,
		&req.Item.LineTotal,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
		&decidedAt,
	)
	if err != nil {
		return err
	}
	req.Item.ID = req.ID
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	return nil
}

func (s *OrderStore) CreateRequest(ctx context.Context, req *models.Request) (*models.Request, error) {
	created := &models.Request{}

	query := `
		INSERT INTO requests (owner_id, owner_name, toy_id, toy_name, kind,
			rent_duration, quantity, unit_price, line_total, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + requestColumns

	err := scanRequest(s.db.QueryRowContext(ctx, query,
		req.OwnerID, req.OwnerName, req.Item.ToyID, req.Item.ToyName,
		req.Item.Kind, req.Item.RentDuration, req.Item.Quantity,
		req.Item.UnitPrice, req.Item.LineTotal, req.Status,
	), created)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return created, nil
}

func (s *OrderStore) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	req := &models.Request{}

	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	err := scanRequest(s.db.QueryRowContext(ctx, query, id), req)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	return req, nil
}

func (s *OrderStore) ListRequests(ctx context.Context, filter commerce.RequestFilter) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests`

	var conds []string
	var args []interface{}
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.OwnerName != "" {
		args = append(args, filter.OwnerName)
		conds = append(conds, fmt.Sprintf("owner_name = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.Request
	for rows.Next() {
		var req models.Request
		if err := scanRequest(rows, &req); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reqs, nil
}

// UpdateRequestStatus is a compare-and-set against the pending state, so two
// concurrent decisions on the same request cannot both land.
func (s *OrderStore) UpdateRequestStatus(ctx context.Context, id int64, status models.RequestStatus) (*models.Request, error) {
	updated := &models.Request{}

	query := `
		UPDATE requests
		SET status = $1, decided_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + requestColumns

	err := scanRequest(s.db.QueryRowContext(ctx, query, status, id, models.RequestStatusPending), updated)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			checkErr := s.db.QueryRowContext(ctx,
				"SELECT EXISTS(SELECT 1 FROM requests WHERE id = $1)", id).Scan(&exists)
			if checkErr == nil && !exists {
				return nil, database.ErrRequestNotFound
			}
			return nil, database.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("update request status: %w", err)
	}

	return updated, nil
}
