package commerce

import (
	"fmt"

	"github.com/safar/toy-market/internal/models"
)

// Operation names a gated core operation.
type Operation string

const (
	OpCreateToy Operation = "catalog.create"
	OpUpdateToy Operation = "catalog.update"
	OpDeleteToy Operation = "catalog.delete"

	OpViewCart       Operation = "cart.view"
	OpAddCartItem    Operation = "cart.add"
	OpRemoveCartItem Operation = "cart.remove"
	OpCheckout       Operation = "cart.checkout"

	OpCreateRequest  Operation = "request.create"
	OpListMyRequests Operation = "request.list-own"

	OpListAllRequests Operation = "request.list-all"
	OpDecideRequest   Operation = "request.decide"
	OpListOrders      Operation = "order.list"
	OpApproveOrder    Operation = "order.approve"

	OpListTransactions Operation = "transaction.list"
)

// rolePermissions is the static access map. Renters own the cart flow,
// suppliers and staff mutate the catalog, staff decide requests and orders.
// Admin is a superset of staff.
var rolePermissions = map[models.Role]map[Operation]bool{
	models.RoleRenter: {
		OpViewCart:       true,
		OpAddCartItem:    true,
		OpRemoveCartItem: true,
		OpCheckout:       true,
		OpCreateRequest:  true,
		OpListMyRequests: true,
	},
	models.RoleSupplier: {
		OpCreateToy: true,
		OpUpdateToy: true,
		OpDeleteToy: true,
	},
	models.RoleStaff: {
		OpCreateToy:        true,
		OpUpdateToy:        true,
		OpDeleteToy:        true,
		OpListAllRequests:  true,
		OpDecideRequest:    true,
		OpListOrders:       true,
		OpApproveOrder:     true,
		OpListTransactions: true,
	},
}

func init() {
	// Admin inherits everything staff can do.
	admin := make(map[Operation]bool, len(rolePermissions[models.RoleStaff]))
	for op := range rolePermissions[models.RoleStaff] {
		admin[op] = true
	}
	rolePermissions[models.RoleAdmin] = admin
}

// Authorize checks that actor may invoke op. It never touches a store and a
// denial never partially executes the guarded operation.
func Authorize(actor *models.Actor, op Operation) error {
	if actor == nil || actor.ID == 0 {
		return fmt.Errorf("%w: operation %s requires a signed-in user", ErrUnauthenticated, op)
	}
	if !rolePermissions[actor.Role][op] {
		return fmt.Errorf("%w: role %q may not perform %s", ErrUnauthorized, actor.Role, op)
	}
	return nil
}
