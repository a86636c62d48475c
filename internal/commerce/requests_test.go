package commerce

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/toy-market/internal/models"
)

func newRequestFixture(t *testing.T) (*RequestService, *fakeCatalog, *fakeOrders) {
	t.Helper()
	catalog := newFakeCatalog(rentableToy())
	orders := newFakeOrders()
	return NewRequestService(catalog, orders), catalog, orders
}

func TestCreateRequest(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	actor := renter()

	req, err := svc.CreateRequest(context.Background(), actor, AddItemInput{
		ToyID: 1, Kind: models.KindRent, RentDuration: models.DurationWeek, Quantity: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, actor.ID, req.OwnerID)
	assert.Equal(t, actor.Name, req.OwnerName)
	assert.Equal(t, "Wooden Train", req.Item.ToyName)
	assert.True(t, req.Item.LineTotal.Equal(decimal.NewFromInt(40)))
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	ctx := context.Background()
	actor := renter()

	_, err := svc.CreateRequest(ctx, actor, AddItemInput{ToyID: 1, Kind: models.KindRent})
	assert.ErrorIs(t, err, ErrMissingDuration)

	_, err = svc.CreateRequest(ctx, actor, AddItemInput{ToyID: 99, Kind: models.KindSale})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateRequest(ctx, staff(), AddItemInput{ToyID: 1, Kind: models.KindSale})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMyRequestsRepricesPendingOnly(t *testing.T) {
	svc, catalog, orders := newRequestFixture(t)
	ctx := context.Background()
	actor := renter()

	pending, err := svc.CreateRequest(ctx, actor, AddItemInput{
		ToyID: 1, Kind: models.KindRent, RentDuration: models.DurationWeek, Quantity: 1,
	})
	require.NoError(t, err)

	decided, err := svc.CreateRequest(ctx, actor, AddItemInput{
		ToyID: 1, Kind: models.KindRent, RentDuration: models.DurationWeek, Quantity: 1,
	})
	require.NoError(t, err)
	_, err = orders.UpdateRequestStatus(ctx, decided.ID, models.RequestStatusApproved)
	require.NoError(t, err)

	catalog.setPrice(1, models.RentalPrice{
		Day:      decimal.NewFromInt(5),
		Week:     decimal.NewFromInt(30),
		TwoWeeks: decimal.NewFromInt(35),
	}, decimal.NewFromInt(60))

	reqs, err := svc.MyRequests(ctx, actor)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	byID := make(map[int64]models.Request, len(reqs))
	for _, req := range reqs {
		byID[req.ID] = req
	}
	assert.True(t, byID[pending.ID].Item.LineTotal.Equal(decimal.NewFromInt(30)),
		"pending request should reprice to 30, got %s", byID[pending.ID].Item.LineTotal)
	assert.True(t, byID[decided.ID].Item.LineTotal.Equal(decimal.NewFromInt(20)),
		"decided request should keep 20, got %s", byID[decided.ID].Item.LineTotal)
}

func TestMyRequestsScopedToOwner(t *testing.T) {
	svc, _, _ := newRequestFixture(t)
	ctx := context.Background()

	alice := renter()
	bob := &models.Actor{ID: 2, Name: "Bob", Role: models.RoleRenter}

	_, err := svc.CreateRequest(ctx, alice, AddItemInput{ToyID: 1, Kind: models.KindSale})
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, bob, AddItemInput{ToyID: 1, Kind: models.KindSale})
	require.NoError(t, err)

	reqs, err := svc.MyRequests(ctx, alice)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, alice.ID, reqs[0].OwnerID)
}

func TestMyRequestsKeepsPriceForVanishedToy(t *testing.T) {
	svc, catalog, _ := newRequestFixture(t)
	ctx := context.Background()
	actor := renter()

	created, err := svc.CreateRequest(ctx, actor, AddItemInput{ToyID: 1, Kind: models.KindSale})
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteToy(ctx, 1))

	reqs, err := svc.MyRequests(ctx, actor)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Item.LineTotal.Equal(created.Item.LineTotal))
}
