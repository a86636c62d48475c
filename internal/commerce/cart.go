package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/toy-market/internal/models"
)

// CartService maintains one renter's working set of line items. Totals always
// reflect live toy prices; a supplier editing prices changes what the renter
// sees on the next read. Prices lock only at checkout.
type CartService struct {
	catalog CatalogStore
	orders  OrderStore
}

func NewCartService(catalog CatalogStore, orders OrderStore) *CartService {
	return &CartService{catalog: catalog, orders: orders}
}

// AddItemInput describes one add-to-cart action.
type AddItemInput struct {
	ToyID        int64
	Kind         models.TransactionKind
	RentDuration models.RentDuration
	Quantity     int
}

// Cart returns the actor's cart with every line repriced from current toy
// data. A renter with no cart yet gets an empty one.
func (s *CartService) Cart(ctx context.Context, actor *models.Actor) (*models.Cart, error) {
	if err := Authorize(actor, OpViewCart); err != nil {
		return nil, err
	}
	cart, err := s.fetchCart(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repriceCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem validates the kind/duration combination against the toy's flags,
// appends a new line and persists the cart. Each add is a new line; identical
// lines are never merged.
func (s *CartService) AddItem(ctx context.Context, actor *models.Actor, input AddItemInput) (*models.Cart, error) {
	if err := Authorize(actor, OpAddCartItem); err != nil {
		return nil, err
	}

	item, err := s.buildLine(ctx, input)
	if err != nil {
		return nil, err
	}

	cart, err := s.fetchCart(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = append(cart.Items, *item)

	saved, err := s.orders.SaveCart(ctx, cart)
	if err != nil {
		return nil, storeErr("save cart", err)
	}
	if err := s.repriceCart(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// RemoveItem drops one line from the actor's cart and persists the change.
func (s *CartService) RemoveItem(ctx context.Context, actor *models.Actor, lineID int64) (*models.Cart, error) {
	if err := Authorize(actor, OpRemoveCartItem); err != nil {
		return nil, err
	}

	cart, err := s.fetchCart(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	saved, err := s.orders.SaveCart(ctx, cart)
	if err != nil {
		return nil, storeErr("save cart", err)
	}
	if err := s.repriceCart(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// buildLine validates an add action and prices the resulting line.
func (s *CartService) buildLine(ctx context.Context, input AddItemInput) (*models.LineItem, error) {
	item := models.LineItem{
		ToyID:    input.ToyID,
		Kind:     input.Kind,
		Quantity: input.Quantity,
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	switch input.Kind {
	case models.KindRent:
		if input.RentDuration == "" {
			return nil, ErrMissingDuration
		}
		if !input.RentDuration.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, input.RentDuration)
		}
		item.RentDuration = input.RentDuration
	case models.KindSale:
		// Duration is ignored for sale lines.
		item.RentDuration = ""
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, input.Kind)
	}

	toy, err := s.catalog.GetToy(ctx, input.ToyID)
	if err != nil {
		return nil, storeErr("get toy", err)
	}
	item.ToyName = toy.Name
	if err := PriceLine(toy, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartService) fetchCart(ctx context.Context, ownerID int64) (*models.Cart, error) {
	cart, err := s.orders.GetCart(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	wrapped := storeErr("get cart", err)
	if errors.Is(wrapped, ErrNotFound) {
		// Lazy creation: the first read materializes an empty cart.
		return &models.Cart{OwnerID: ownerID}, nil
	}
	return nil, wrapped
}

// repriceCart recomputes every line and the running total from current toy
// prices. Lines whose toy has vanished keep their last stored price.
func (s *CartService) repriceCart(ctx context.Context, cart *models.Cart) error {
	toys := make(map[int64]*models.Toy, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		toy, ok := toys[item.ToyID]
		if !ok {
			var err error
			toy, err = s.catalog.GetToy(ctx, item.ToyID)
			if err != nil {
				wrapped := storeErr("get toy", err)
				if errors.Is(wrapped, ErrNotFound) {
					continue
				}
				return wrapped
			}
			toys[item.ToyID] = toy
		}
		item.ToyName = toy.Name
		if err := PriceLine(toy, item); err != nil {
			return err
		}
	}
	cart.Total = Aggregate(cart.Items)
	return nil
}
