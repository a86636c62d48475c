package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/safar/toy-market/internal/models"
)

// CatalogService owns toy lifecycle on behalf of suppliers and staff.
type CatalogService struct {
	catalog CatalogStore
}

func NewCatalogService(catalog CatalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ToyInput is the caller-supplied shape for creating a toy.
type ToyInput struct {
	Name           string
	Category       string
	Description    string
	ImageURL       string
	InventoryCount int
	Availability   bool
	IsRentable     bool
	IsSaleable     bool
	RentalPrice    models.RentalPrice
	FixedPrice     decimal.Decimal
}

// ToyPatch updates a subset of toy fields. Nil pointers leave the field
// untouched.
type ToyPatch struct {
	Name           *string
	Category       *string
	Description    *string
	ImageURL       *string
	InventoryCount *int
	Availability   *bool
	IsRentable     *bool
	IsSaleable     *bool
	RentalPrice    *models.RentalPrice
	FixedPrice     *decimal.Decimal
}

var errToyNotListable = errors.New("toy must be rentable, saleable, or both")

// clampPrice enforces the no-negative-money boundary rule.
func clampPrice(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clampRentalPrice(p models.RentalPrice) models.RentalPrice {
	return models.RentalPrice{
		Day:      clampPrice(p.Day),
		Week:     clampPrice(p.Week),
		TwoWeeks: clampPrice(p.TwoWeeks),
	}
}

func (s *CatalogService) CreateToy(ctx context.Context, actor *models.Actor, input ToyInput) (*models.Toy, error) {
	if err := Authorize(actor, OpCreateToy); err != nil {
		return nil, err
	}
	if !input.IsRentable && !input.IsSaleable {
		return nil, errToyNotListable
	}
	if input.Name == "" {
		return nil, errors.New("toy name is required")
	}

	toy := &models.Toy{
		SupplierID:     actor.ID,
		Name:           input.Name,
		Category:       input.Category,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		InventoryCount: max(input.InventoryCount, 0),
		Availability:   input.Availability,
		IsRentable:     input.IsRentable,
		IsSaleable:     input.IsSaleable,
		RentalPrice:    clampRentalPrice(input.RentalPrice),
		FixedPrice:     clampPrice(input.FixedPrice),
	}

	created, err := s.catalog.CreateToy(ctx, toy)
	if err != nil {
		return nil, storeErr("create toy", err)
	}
	return created, nil
}

func (s *CatalogService) UpdateToy(ctx context.Context, actor *models.Actor, id int64, patch ToyPatch) (*models.Toy, error) {
	if err := Authorize(actor, OpUpdateToy); err != nil {
		return nil, err
	}

	toy, err := s.catalog.GetToy(ctx, id)
	if err != nil {
		return nil, storeErr("get toy", err)
	}
	if actor.Role == models.RoleSupplier && toy.SupplierID != actor.ID {
		return nil, fmt.Errorf("%w: toy %d belongs to another supplier", ErrUnauthorized, id)
	}

	if patch.Name != nil {
		toy.Name = *patch.Name
	}
	if patch.Category != nil {
		toy.Category = *patch.Category
	}
	if patch.Description != nil {
		toy.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		toy.ImageURL = *patch.ImageURL
	}
	if patch.InventoryCount != nil {
		toy.InventoryCount = max(*patch.InventoryCount, 0)
	}
	if patch.Availability != nil {
		toy.Availability = *patch.Availability
	}
	if patch.IsRentable != nil {
		toy.IsRentable = *patch.IsRentable
	}
	if patch.IsSaleable != nil {
		toy.IsSaleable = *patch.IsSaleable
	}
	if patch.RentalPrice != nil {
		toy.RentalPrice = clampRentalPrice(*patch.RentalPrice)
	}
	if patch.FixedPrice != nil {
		toy.FixedPrice = clampPrice(*patch.FixedPrice)
	}

	if !toy.IsRentable && !toy.IsSaleable {
		return nil, errToyNotListable
	}

	updated, err := s.catalog.UpdateToy(ctx, toy)
	if err != nil {
		return nil, storeErr("update toy", err)
	}
	return updated, nil
}

// DeleteToy removes a toy from the catalog. Historical orders and
// transactions keep their denormalized name and price snapshots.
func (s *CatalogService) DeleteToy(ctx context.Context, actor *models.Actor, id int64) error {
	if err := Authorize(actor, OpDeleteToy); err != nil {
		return err
	}
	toy, err := s.catalog.GetToy(ctx, id)
	if err != nil {
		return storeErr("get toy", err)
	}
	if actor.Role == models.RoleSupplier && toy.SupplierID != actor.ID {
		return fmt.Errorf("%w: toy %d belongs to another supplier", ErrUnauthorized, id)
	}
	if err := s.catalog.DeleteToy(ctx, id); err != nil {
		return storeErr("delete toy", err)
	}
	return nil
}

// GetToy and ListToys are ungated; browsing the catalog needs no account.
func (s *CatalogService) GetToy(ctx context.Context, id int64) (*models.Toy, error) {
	toy, err := s.catalog.GetToy(ctx, id)
	if err != nil {
		return nil, storeErr("get toy", err)
	}
	return toy, nil
}

func (s *CatalogService) ListToys(ctx context.Context, page, pageSize int) ([]models.Toy, int64, error) {
	toys, total, err := s.catalog.ListToys(ctx, page, pageSize)
	if err != nil {
		return nil, 0, storeErr("list toys", err)
	}
	return toys, total, nil
}
