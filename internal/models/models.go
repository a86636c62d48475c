package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleRenter   Role = "renter"
	RoleSupplier Role = "supplier"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated caller of a core operation. It is always passed
// explicitly; the core keeps no ambient notion of a current user.
type Actor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Token string `json:"-"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// TransactionKind discriminates rent lines from sale lines everywhere a line
// item appears (cart entries, requests, order items).
type TransactionKind string

const (
	KindRent TransactionKind = "rent"
	KindSale TransactionKind = "sale"
)

// RentDuration is the rental tier a rent line is priced against.
type RentDuration string

const (
	DurationDay      RentDuration = "day"
	DurationWeek     RentDuration = "week"
	DurationTwoWeeks RentDuration = "twoWeeks"
)

func (d RentDuration) Valid() bool {
	switch d {
	case DurationDay, DurationWeek, DurationTwoWeeks:
		return true
	}
	return false
}

// RentalPrice holds the per-tier rental prices of a toy.
type RentalPrice struct {
	Day      decimal.Decimal `json:"day"`
	Week     decimal.Decimal `json:"week"`
	TwoWeeks decimal.Decimal `json:"twoWeeks"`
}

type Toy struct {
	ID             int64           `json:"id"`
	SupplierID     int64           `json:"supplier_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Description    string          `json:"description,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	InventoryCount int             `json:"inventory_count"`
	Availability   bool            `json:"availability"`
	IsRentable     bool            `json:"is_rentable"`
	IsSaleable     bool            `json:"is_saleable"`
	RentalPrice    RentalPrice     `json:"rental_price"`
	FixedPrice     decimal.Decimal `json:"fixed_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// LineItem is one rent-or-sale selection of a toy. The same shape is used for
// cart entries, requests and order items; UnitPrice and LineTotal are derived
// from live toy prices until the line is frozen into an order or transaction.
type LineItem struct {
	ID           int64           `json:"id"`
	ToyID        int64           `json:"toy_id"`
	ToyName      string          `json:"toy_name,omitempty"`
	Kind         TransactionKind `json:"kind"`
	RentDuration RentDuration    `json:"rent_duration,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// Cart is one renter's uncommitted working set. Carts are created lazily and
// never closed; checkout empties them.
type Cart struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"owner_id"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request is a renter's standalone ask for one line item, subject to staff
// approval.
type Request struct {
	ID        int64         `json:"id"`
	OwnerID   int64         `json:"owner_id"`
	OwnerName string        `json:"owner_name"`
	Item      LineItem      `json:"item"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	DecidedAt *time.Time    `json:"decided_at,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
)

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order is the committed result of checking out a cart. Its items and total
// are snapshots; later catalog edits never change them.
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	OwnerID         int64           `json:"owner_id"`
	OwnerName       string          `json:"owner_name,omitempty"`
	ShippingAddress Address         `json:"shipping_address"`
	TransactionType TransactionKind `json:"transaction_type"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
}

// Transaction is the write-once historical record cut when a request or an
// order is approved.
type Transaction struct {
	ID              int64           `json:"id"`
	ToyID           int64           `json:"toy_id"`
	ToyName         string          `json:"toy_name"`
	TransactionType TransactionKind `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Duration        RentDuration    `json:"duration,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
