package commerce

import (
	"context"
	"errors"

	"github.com/safar/toy-market/internal/models"
)

// RequestService handles a renter's standalone asks, created outside the cart
// flow and decided later by staff.
type RequestService struct {
	catalog CatalogStore
	orders  OrderStore
}

func NewRequestService(catalog CatalogStore, orders OrderStore) *RequestService {
	return &RequestService{catalog: catalog, orders: orders}
}

// CreateRequest validates and prices a single line, then persists it as a
// pending request owned by the actor.
func (s *RequestService) CreateRequest(ctx context.Context, actor *models.Actor, input AddItemInput) (*models.Request, error) {
	if err := Authorize(actor, OpCreateRequest); err != nil {
		return nil, err
	}

	// Same validation path as an add-to-cart action.
	cart := CartService{catalog: s.catalog, orders: s.orders}
	item, err := cart.buildLine(ctx, input)
	if err != nil {
		return nil, err
	}

	req := &models.Request{
		OwnerID:   actor.ID,
		OwnerName: actor.Name,
		Item:      *item,
		Status:    models.RequestStatusPending,
	}
	created, err := s.orders.CreateRequest(ctx, req)
	if err != nil {
		return nil, storeErr("create request", err)
	}
	return created, nil
}

// MyRequests lists the actor's own requests. Pending lines are repriced from
// live toy data; decided requests keep the price they were decided at.
func (s *RequestService) MyRequests(ctx context.Context, actor *models.Actor) ([]models.Request, error) {
	if err := Authorize(actor, OpListMyRequests); err != nil {
		return nil, err
	}
	reqs, err := s.orders.ListRequests(ctx, RequestFilter{OwnerID: actor.ID})
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	if err := s.repriceRequests(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *RequestService) repriceRequests(ctx context.Context, reqs []models.Request) error {
	toys := make(map[int64]*models.Toy)
	for i := range reqs {
		req := &reqs[i]
		if req.Status != models.RequestStatusPending {
			continue
		}
		toy, ok := toys[req.Item.ToyID]
		if !ok {
			var err error
			toy, err = s.catalog.GetToy(ctx, req.Item.ToyID)
			if err != nil {
				wrapped := storeErr("get toy", err)
				if errors.Is(wrapped, ErrNotFound) {
					continue
				}
				return wrapped
			}
			toys[req.Item.ToyID] = toy
		}
		req.Item.ToyName = toy.Name
		if err := PriceLine(toy, &req.Item); err != nil {
			// A toy made non-rentable after the ask keeps its stored price.
			continue
		}
	}
	return nil
}
