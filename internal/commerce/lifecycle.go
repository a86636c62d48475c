package commerce

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/safar/toy-market/internal/models"
)

// Status machine: pending -> approved | rejected for requests, pending ->
// approved for orders. Terminal states absorb; there is deliberately no
// rejected path for orders, which are post-payment commitments.

func transitionRequest(current, target models.RequestStatus) error {
	switch target {
	case models.RequestStatusApproved, models.RequestStatusRejected:
	default:
		return fmt.Errorf("%w: request status %q", ErrInvalidTransition, target)
	}
	if current != models.RequestStatusPending {
		return fmt.Errorf("%w: request is already %s", ErrAlreadyTerminal, current)
	}
	return nil
}

func transitionOrder(current, target models.OrderStatus) error {
	if target != models.OrderStatusApproved {
		return fmt.Errorf("%w: order status %q", ErrInvalidTransition, target)
	}
	if current != models.OrderStatusPending {
		return fmt.Errorf("%w: order is already %s", ErrAlreadyTerminal, current)
	}
	return nil
}

// LifecycleService is the staff side of the engine: deciding requests,
// approving orders and cutting the resulting transaction records.
type LifecycleService struct {
	orders OrderStore
}

func NewLifecycleService(orders OrderStore) *LifecycleService {
	return &LifecycleService{orders: orders}
}

// RequestGroup is one owner's partition of pending and decided requests, the
// unit a batch action targets.
type RequestGroup struct {
	Owner    string           `json:"owner"`
	Requests []models.Request `json:"requests"`
	Total    decimal.Decimal  `json:"total"`
}

// BatchFailure records one entity a batch transition could not move.
type BatchFailure struct {
	RequestID int64  `json:"request_id"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

// BatchResult reports a best-effort batch outcome. Partial success is an
// expected result, not an error.
type BatchResult struct {
	Updated []models.Request `json:"updated"`
	Failed  []BatchFailure   `json:"failed"`
}

func (s *LifecycleService) ApproveRequest(ctx context.Context, actor *models.Actor, id int64) (*models.Request, error) {
	return s.decideRequest(ctx, actor, id, models.RequestStatusApproved)
}

func (s *LifecycleService) RejectRequest(ctx context.Context, actor *models.Actor, id int64) (*models.Request, error) {
	return s.decideRequest(ctx, actor, id, models.RequestStatusRejected)
}

func (s *LifecycleService) decideRequest(ctx context.Context, actor *models.Actor, id int64, target models.RequestStatus) (*models.Request, error) {
	if err := Authorize(actor, OpDecideRequest); err != nil {
		return nil, err
	}
	req, err := s.orders.GetRequest(ctx, id)
	if err != nil {
		return nil, storeErr("get request", err)
	}
	if err := transitionRequest(req.Status, target); err != nil {
		return nil, err
	}
	updated, err := s.orders.UpdateRequestStatus(ctx, id, target)
	if err != nil {
		return nil, storeErr("update request status", err)
	}
	if target == models.RequestStatusApproved {
		if err := s.recordRequestTransaction(ctx, updated); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

// ApproveOrder moves a pending order to its only terminal state and cuts one
// transaction record per order item.
func (s *LifecycleService) ApproveOrder(ctx context.Context, actor *models.Actor, id int64) (*models.Order, error) {
	if err := Authorize(actor, OpApproveOrder); err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if err := transitionOrder(order.Status, models.OrderStatusApproved); err != nil {
		return nil, err
	}
	updated, err := s.orders.UpdateOrderStatus(ctx, id, models.OrderStatusApproved)
	if err != nil {
		return nil, storeErr("update order status", err)
	}
	for _, item := range updated.Items {
		record := &models.Transaction{
			ToyID:           item.ToyID,
			ToyName:         item.ToyName,
			TransactionType: item.Kind,
			Amount:          item.LineTotal,
			Status:          string(models.OrderStatusApproved),
			Duration:        item.RentDuration,
		}
		if _, err := s.orders.CreateTransaction(ctx, record); err != nil {
			return updated, storeErr("create transaction", err)
		}
	}
	return updated, nil
}

// Orders pages through orders for staff review, newest first.
func (s *LifecycleService) Orders(ctx context.Context, actor *models.Actor, cursor string, limit int) ([]models.Order, string, error) {
	if err := Authorize(actor, OpListOrders); err != nil {
		return nil, "", err
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	orders, next, err := s.orders.ListOrders(ctx, cursor, limit)
	if err != nil {
		return nil, "", storeErr("list orders", err)
	}
	return orders, next, nil
}

// AllRequestsGrouped partitions every request by owner display name, each
// partition carrying its aggregate total. Groups come back sorted by owner for
// stable display.
func (s *LifecycleService) AllRequestsGrouped(ctx context.Context, actor *models.Actor) ([]RequestGroup, error) {
	if err := Authorize(actor, OpListAllRequests); err != nil {
		return nil, err
	}
	reqs, err := s.orders.ListRequests(ctx, RequestFilter{})
	if err != nil {
		return nil, storeErr("list requests", err)
	}

	byOwner := make(map[string][]models.Request)
	for _, req := range reqs {
		byOwner[req.OwnerName] = append(byOwner[req.OwnerName], req)
	}

	groups := make([]RequestGroup, 0, len(byOwner))
	for owner, owned := range byOwner {
		items := make([]models.LineItem, len(owned))
		for i, req := range owned {
			items[i] = req.Item
		}
		groups = append(groups, RequestGroup{
			Owner:    owner,
			Requests: owned,
			Total:    Aggregate(items),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Owner < groups[j].Owner })
	return groups, nil
}

// BatchUpdateRequests applies one transition to every request in a single
// owner's partition. Best-effort by contract: each request is attempted
// independently, failures are collected, and a cancellation mid-flight leaves
// already-applied transitions applied.
func (s *LifecycleService) BatchUpdateRequests(ctx context.Context, actor *models.Actor, ownerName string, target models.RequestStatus) (*BatchResult, error) {
	if err := Authorize(actor, OpDecideRequest); err != nil {
		return nil, err
	}
	switch target {
	case models.RequestStatusApproved, models.RequestStatusRejected:
	default:
		return nil, fmt.Errorf("%w: request status %q", ErrInvalidTransition, target)
	}

	reqs, err := s.orders.ListRequests(ctx, RequestFilter{OwnerName: ownerName})
	if err != nil {
		return nil, storeErr("list requests", err)
	}

	result := &BatchResult{}
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return result, storeErr("batch transition", err)
		}
		if err := transitionRequest(req.Status, target); err != nil {
			result.Failed = append(result.Failed, BatchFailure{RequestID: req.ID, Reason: err.Error(), Err: err})
			continue
		}
		updated, err := s.orders.UpdateRequestStatus(ctx, req.ID, target)
		if err != nil {
			wrapped := storeErr("update request status", err)
			result.Failed = append(result.Failed, BatchFailure{RequestID: req.ID, Reason: wrapped.Error(), Err: wrapped})
			continue
		}
		if target == models.RequestStatusApproved {
			if err := s.recordRequestTransaction(ctx, updated); err != nil {
				// The transition stuck; only the history record is missing.
				// Listed once, as a failure, so callers counting the
				// partition never see the same request on both sides.
				result.Failed = append(result.Failed, BatchFailure{
					RequestID: req.ID,
					Reason:    fmt.Sprintf("approved, but recording the transaction failed: %v", err),
					Err:       err,
				})
				continue
			}
		}
		result.Updated = append(result.Updated, *updated)
	}
	return result, nil
}

// Transactions lists the immutable history of approved rents and sales.
func (s *LifecycleService) Transactions(ctx context.Context, actor *models.Actor) ([]models.Transaction, error) {
	if err := Authorize(actor, OpListTransactions); err != nil {
		return nil, err
	}
	records, err := s.orders.ListTransactions(ctx)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	return records, nil
}

func (s *LifecycleService) recordRequestTransaction(ctx context.Context, req *models.Request) error {
	record := &models.Transaction{
		ToyID:           req.Item.ToyID,
		ToyName:         req.Item.ToyName,
		TransactionType: req.Item.Kind,
		Amount:          req.Item.LineTotal,
		Status:          string(models.RequestStatusApproved),
		Duration:        req.Item.RentDuration,
	}
	if _, err := s.orders.CreateTransaction(ctx, record); err != nil {
		return storeErr("create transaction", err)
	}
	return nil
}
