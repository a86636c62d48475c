package commerce

import (
	"context"

	"github.com/safar/toy-market/internal/models"
)

// CatalogStore persists toys. The postgres implementation lives in
// internal/store; unit tests supply in-memory fakes.
type CatalogStore interface {
	GetToy(ctx context.Context, id int64) (*models.Toy, error)
	ListToys(ctx context.Context, page, pageSize int) ([]models.Toy, int64, error)
	CreateToy(ctx context.Context, toy *models.Toy) (*models.Toy, error)
	UpdateToy(ctx context.Context, toy *models.Toy) (*models.Toy, error)
	DeleteToy(ctx context.Context, id int64) error
}

// RequestFilter narrows ListRequests. Zero values mean no constraint.
type RequestFilter struct {
	OwnerID   int64
	OwnerName string
	Status    models.RequestStatus
}

// OrderStore persists carts, requests, orders and transaction records.
//
// CreateOrder must insert the order with its items and empty the owner's cart
// in a single transaction; a cart is never left re-playable into a second
// order.
type OrderStore interface {
	GetCart(ctx context.Context, ownerID int64) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) (*models.Cart, error)

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, cursor string, limit int) ([]models.Order, string, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)

	CreateRequest(ctx context.Context, req *models.Request) (*models.Request, error)
	GetRequest(ctx context.Context, id int64) (*models.Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]models.Request, error)
	UpdateRequestStatus(ctx context.Context, id int64, status models.RequestStatus) (*models.Request, error)

	CreateTransaction(ctx context.Context, record *models.Transaction) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}
