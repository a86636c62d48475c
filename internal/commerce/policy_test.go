package commerce

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safar/toy-market/internal/models"
)

func TestAuthorizeRequiresActor(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, OpViewCart), ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(&models.Actor{}, OpViewCart), ErrUnauthenticated)
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	tests := []struct {
		name    string
		actor   *models.Actor
		op      Operation
		allowed bool
	}{
		{"renter checks out", renter(), OpCheckout, true},
		{"renter creates request", renter(), OpCreateRequest, true},
		{"renter cannot create toys", renter(), OpCreateToy, false},
		{"renter cannot decide requests", renter(), OpDecideRequest, false},
		{"renter cannot list transactions", renter(), OpListTransactions, false},
		{"supplier creates toys", supplier(), OpCreateToy, true},
		{"supplier cannot view carts", supplier(), OpViewCart, false},
		{"supplier cannot approve orders", supplier(), OpApproveOrder, false},
		{"staff creates toys", staff(), OpCreateToy, true},
		{"staff decides requests", staff(), OpDecideRequest, true},
		{"staff approves orders", staff(), OpApproveOrder, true},
		{"staff cannot check out", staff(), OpCheckout, false},
		{"admin inherits staff", &models.Actor{ID: 2, Role: models.RoleAdmin}, OpDecideRequest, true},
		{"admin cannot check out", &models.Actor{ID: 2, Role: models.RoleAdmin}, OpCheckout, false},
		{"unknown role denied", &models.Actor{ID: 3, Role: "ghost"}, OpViewCart, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.op)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnauthorized)
			}
		})
	}
}
