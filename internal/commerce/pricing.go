package commerce

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/safar/toy-market/internal/models"
)

// Pricing is pure: no storage, no side effects. Given the same toy state it
// always produces the same result, which is why cart totals may drift between
// reads while a supplier edits prices — carts are not price-locked until
// checkout.

// UnitPrice returns the price of a single unit of toy for the given
// transaction kind and, for rentals, duration tier.
func UnitPrice(toy *models.Toy, kind models.TransactionKind, duration models.RentDuration) (decimal.Decimal, error) {
	switch kind {
	case models.KindRent:
		if !toy.IsRentable {
			return decimal.Zero, fmt.Errorf("toy %d: %w", toy.ID, ErrNotRentable)
		}
		switch duration {
		case models.DurationDay:
			return toy.RentalPrice.Day, nil
		case models.DurationWeek:
			return toy.RentalPrice.Week, nil
		case models.DurationTwoWeeks:
			return toy.RentalPrice.TwoWeeks, nil
		default:
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDuration, duration)
		}
	case models.KindSale:
		if !toy.IsSaleable {
			return decimal.Zero, fmt.Errorf("toy %d: %w", toy.ID, ErrNotSaleable)
		}
		return toy.FixedPrice, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// LineTotal prices one line item against the toy it references.
func LineTotal(toy *models.Toy, item models.LineItem) (decimal.Decimal, error) {
	unit, err := UnitPrice(toy, item.Kind, item.RentDuration)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(item.Quantity))), nil
}

// PriceLine fills a line item's derived price fields from the toy's current
// prices.
func PriceLine(toy *models.Toy, item *models.LineItem) error {
	unit, err := UnitPrice(toy, item.Kind, item.RentDuration)
	if err != nil {
		return err
	}
	item.UnitPrice = unit
	item.LineTotal = unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return nil
}

// Aggregate sums the line totals of already-priced items. An empty sequence
// aggregates to zero; the result does not depend on item order.
func Aggregate(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}
