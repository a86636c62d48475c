package commerce

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/toy-market/internal/models"
)

// CheckoutService converts a non-empty cart into a pending order.
type CheckoutService struct {
	catalog CatalogStore
	orders  OrderStore
}

func NewCheckoutService(catalog CatalogStore, orders OrderStore) *CheckoutService {
	return &CheckoutService{catalog: catalog, orders: orders}
}

// validateAddress reports the first blank required field.
func validateAddress(addr models.Address) error {
	fields := []struct {
		name  string
		value string
	}{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"postalCode", addr.PostalCode},
		{"country", addr.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidAddress, f.name)
		}
	}
	return nil
}

// Checkout snapshots the actor's cart into a new pending order. Every line is
// priced one final time from current toy data and frozen; the order insert and
// the cart clear happen in one store transaction, so a cart can never be
// played into a second order.
func (s *CheckoutService) Checkout(ctx context.Context, actor *models.Actor, addr models.Address, transactionType models.TransactionKind) (*models.Order, error) {
	if err := Authorize(actor, OpCheckout); err != nil {
		return nil, err
	}
	switch transactionType {
	case models.KindRent, models.KindSale:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, transactionType)
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	cart, err := s.orders.GetCart(ctx, actor.ID)
	if err != nil {
		wrapped := storeErr("get cart", err)
		if errors.Is(wrapped, ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, wrapped
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.LineItem, 0, len(cart.Items))
	toys := make(map[int64]*models.Toy, len(cart.Items))
	for _, item := range cart.Items {
		toy, ok := toys[item.ToyID]
		if !ok {
			toy, err = s.catalog.GetToy(ctx, item.ToyID)
			if err != nil {
				return nil, storeErr("get toy", err)
			}
			toys[item.ToyID] = toy
		}
		// Freeze: the snapshot keeps this price however the catalog changes.
		snapshot := item
		snapshot.ID = 0
		snapshot.ToyName = toy.Name
		if err := PriceLine(toy, &snapshot); err != nil {
			return nil, err
		}
		items = append(items, snapshot)
	}

	order := &models.Order{
		OwnerID:         actor.ID,
		OwnerName:       actor.Name,
		ShippingAddress: addr,
		TransactionType: transactionType,
		Items:           items,
		TotalAmount:     Aggregate(items),
		Status:          models.OrderStatusPending,
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, storeErr("create order", err)
	}
	return created, nil
}
