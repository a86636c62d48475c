package commerce

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
)

// In-memory store fakes. They copy on read and write so tests observe the same
// aliasing behavior a real database gives.

type fakeCatalog struct {
	toys   map[int64]*models.Toy
	nextID int64
	getErr error
}

func newFakeCatalog(toys ...*models.Toy) *fakeCatalog {
	c := &fakeCatalog{toys: make(map[int64]*models.Toy)}
	for _, toy := range toys {
		c.nextID++
		copied := *toy
		copied.ID = c.nextID
		copied.Version = 1
		c.toys[copied.ID] = &copied
	}
	return c
}

func (c *fakeCatalog) GetToy(_ context.Context, id int64) (*models.Toy, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	toy, ok := c.toys[id]
	if !ok {
		return nil, database.ErrToyNotFound
	}
	copied := *toy
	return &copied, nil
}

func (c *fakeCatalog) ListToys(_ context.Context, page, pageSize int) ([]models.Toy, int64, error) {
	ids := make([]int64, 0, len(c.toys))
	for id := range c.toys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var toys []models.Toy
	start := (page - 1) * pageSize
	for i := start; i < len(ids) && i < start+pageSize; i++ {
		toys = append(toys, *c.toys[ids[i]])
	}
	return toys, int64(len(c.toys)), nil
}

func (c *fakeCatalog) CreateToy(_ context.Context, toy *models.Toy) (*models.Toy, error) {
	c.nextID++
	copied := *toy
	copied.ID = c.nextID
	copied.Version = 1
	c.toys[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (c *fakeCatalog) UpdateToy(_ context.Context, toy *models.Toy) (*models.Toy, error) {
	current, ok := c.toys[toy.ID]
	if !ok {
		return nil, database.ErrToyNotFound
	}
	if current.Version != toy.Version {
		return nil, database.ErrOptimisticLockFailed
	}
	copied := *toy
	copied.Version++
	c.toys[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (c *fakeCatalog) DeleteToy(_ context.Context, id int64) error {
	if _, ok := c.toys[id]; !ok {
		return database.ErrToyNotFound
	}
	delete(c.toys, id)
	return nil
}

// setPrice mutates a stored toy in place, simulating a concurrent supplier
// edit between two service calls.
func (c *fakeCatalog) setPrice(id int64, rental models.RentalPrice, fixed decimal.Decimal) {
	c.toys[id].RentalPrice = rental
	c.toys[id].FixedPrice = fixed
}

type fakeOrders struct {
	carts        map[int64]*models.Cart
	orders       map[int64]*models.Order
	requests     map[int64]*models.Request
	transactions []models.Transaction

	nextLineID    int64
	nextOrderID   int64
	nextRequestID int64

	updateRequestErr map[int64]error
	createTxErr      error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		carts:            make(map[int64]*models.Cart),
		orders:           make(map[int64]*models.Order),
		requests:         make(map[int64]*models.Request),
		updateRequestErr: make(map[int64]error),
	}
}

func copyCart(cart *models.Cart) *models.Cart {
	copied := *cart
	copied.Items = append([]models.LineItem(nil), cart.Items...)
	return &copied
}

func copyOrder(order *models.Order) *models.Order {
	copied := *order
	copied.Items = append([]models.LineItem(nil), order.Items...)
	return &copied
}

func (o *fakeOrders) GetCart(_ context.Context, ownerID int64) (*models.Cart, error) {
	cart, ok := o.carts[ownerID]
	if !ok {
		return nil, database.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (o *fakeOrders) SaveCart(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	saved := copyCart(cart)
	if saved.ID == 0 {
		saved.ID = cart.OwnerID
	}
	for i := range saved.Items {
		if saved.Items[i].ID == 0 {
			o.nextLineID++
			saved.Items[i].ID = o.nextLineID
		}
	}
	o.carts[cart.OwnerID] = copyCart(saved)
	return saved, nil
}

func (o *fakeOrders) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	o.nextOrderID++
	created := copyOrder(order)
	created.ID = o.nextOrderID
	created.OrderNumber = fmt.Sprintf("ORD-%d", created.ID)
	for i := range created.Items {
		o.nextLineID++
		created.Items[i].ID = o.nextLineID
	}
	o.orders[created.ID] = copyOrder(created)
	delete(o.carts, order.OwnerID)
	return created, nil
}

func (o *fakeOrders) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	order, ok := o.orders[id]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (o *fakeOrders) ListOrders(_ context.Context, _ string, _ int) ([]models.Order, string, error) {
	ids := make([]int64, 0, len(o.orders))
	for id := range o.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, *copyOrder(o.orders[id]))
	}
	return orders, "", nil
}

func (o *fakeOrders) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	order, ok := o.orders[id]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, database.ErrAlreadyDecided
	}
	order.Status = status
	return copyOrder(order), nil
}

func (o *fakeOrders) CreateRequest(_ context.Context, req *models.Request) (*models.Request, error) {
	o.nextRequestID++
	copied := *req
	copied.ID = o.nextRequestID
	copied.Item.ID = copied.ID
	o.requests[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (o *fakeOrders) GetRequest(_ context.Context, id int64) (*models.Request, error) {
	req, ok := o.requests[id]
	if !ok {
		return nil, database.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (o *fakeOrders) ListRequests(_ context.Context, filter RequestFilter) ([]models.Request, error) {
	ids := make([]int64, 0, len(o.requests))
	for id := range o.requests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var reqs []models.Request
	for _, id := range ids {
		req := o.requests[id]
		if filter.OwnerID != 0 && req.OwnerID != filter.OwnerID {
			continue
		}
		if filter.OwnerName != "" && req.OwnerName != filter.OwnerName {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		reqs = append(reqs, *req)
	}
	return reqs, nil
}

func (o *fakeOrders) UpdateRequestStatus(_ context.Context, id int64, status models.RequestStatus) (*models.Request, error) {
	if err := o.updateRequestErr[id]; err != nil {
		return nil, err
	}
	req, ok := o.requests[id]
	if !ok {
		return nil, database.ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, database.ErrAlreadyDecided
	}
	req.Status = status
	copied := *req
	return &copied, nil
}

func (o *fakeOrders) CreateTransaction(_ context.Context, record *models.Transaction) (*models.Transaction, error) {
	if o.createTxErr != nil {
		return nil, o.createTxErr
	}
	copied := *record
	copied.ID = int64(len(o.transactions) + 1)
	o.transactions = append(o.transactions, copied)
	result := copied
	return &result, nil
}

func (o *fakeOrders) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	return append([]models.Transaction(nil), o.transactions...), nil
}

// Shared fixtures.

func rentableToy() *models.Toy {
	return &models.Toy{
		SupplierID:     10,
		Name:           "Wooden Train",
		Category:       "vehicles",
		InventoryCount: 5,
		Availability:   true,
		IsRentable:     true,
		IsSaleable:     true,
		RentalPrice: models.RentalPrice{
			Day:      decimal.NewFromInt(5),
			Week:     decimal.NewFromInt(20),
			TwoWeeks: decimal.NewFromInt(35),
		},
		FixedPrice: decimal.NewFromInt(60),
	}
}

func renter() *models.Actor {
	return &models.Actor{ID: 1, Name: "Alice", Role: models.RoleRenter}
}

func supplier() *models.Actor {
	return &models.Actor{ID: 10, Name: "Sam", Role: models.RoleSupplier}
}

func staff() *models.Actor {
	return &models.Actor{ID: 100, Name: "Dana", Role: models.RoleStaff}
}
