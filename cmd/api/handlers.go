package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/safar/toy-market/internal/auth"
	"github.com/safar/toy-market/internal/commerce"
	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/models"
	"github.com/safar/toy-market/internal/store"
)

type api struct {
	catalog   *commerce.CatalogService
	cart      *commerce.CartService
	checkout  *commerce.CheckoutService
	requests  *commerce.RequestService
	lifecycle *commerce.LifecycleService
}

type rentalPricePayload struct {
	Day      float64 `json:"day"`
	Week     float64 `json:"week"`
	TwoWeeks float64 `json:"twoWeeks"`
}

type toyPayload struct {
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	Description    string             `json:"description"`
	ImageURL       string             `json:"imageUrl"`
	InventoryCount int                `json:"inventory_count"`
	Availability   bool               `json:"availability"`
	IsRentable     bool               `json:"is_rentable"`
	IsSaleable     bool               `json:"is_saleable"`
	Price          rentalPricePayload `json:"price"`
	FixedPrice     float64            `json:"fixedPrice"`
}

func (p toyPayload) toInput() commerce.ToyInput {
	return commerce.ToyInput{
		Name:           p.Name,
		Category:       p.Category,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		InventoryCount: p.InventoryCount,
		Availability:   p.Availability,
		IsRentable:     p.IsRentable,
		IsSaleable:     p.IsSaleable,
		RentalPrice: models.RentalPrice{
			Day:      decimal.NewFromFloat(p.Price.Day),
			Week:     decimal.NewFromFloat(p.Price.Week),
			TwoWeeks: decimal.NewFromFloat(p.Price.TwoWeeks),
		},
		FixedPrice: decimal.NewFromFloat(p.FixedPrice),
	}
}

func (a *api) listToys(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	toys, total, err := a.catalog.ListToys(r.Context(), page, pageSize)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	respondJSON(w, http.StatusOK, &store.OffsetPage{
		Items:      toys,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func (a *api) createToy(w http.ResponseWriter, r *http.Request) {
	var payload toyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	toy, err := a.catalog.CreateToy(r.Context(), auth.ActorFrom(r.Context()), payload.toInput())
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, toy)
}

func (a *api) getToy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid toy ID")
		return
	}
	toy, err := a.catalog.GetToy(r.Context(), id)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toy)
}

type toyPatchPayload struct {
	Name           *string             `json:"name"`
	Category       *string             `json:"category"`
	Description    *string             `json:"description"`
	ImageURL       *string             `json:"imageUrl"`
	InventoryCount *int                `json:"inventory_count"`
	Availability   *bool               `json:"availability"`
	IsRentable     *bool               `json:"is_rentable"`
	IsSaleable     *bool               `json:"is_saleable"`
	Price          *rentalPricePayload `json:"price"`
	FixedPrice     *float64            `json:"fixedPrice"`
}

func (a *api) updateToy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid toy ID")
		return
	}

	var payload toyPatchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := commerce.ToyPatch{
		Name:           payload.Name,
		Category:       payload.Category,
		Description:    payload.Description,
		ImageURL:       payload.ImageURL,
		InventoryCount: payload.InventoryCount,
		Availability:   payload.Availability,
		IsRentable:     payload.IsRentable,
		IsSaleable:     payload.IsSaleable,
	}
	if payload.Price != nil {
		patch.RentalPrice = &models.RentalPrice{
			Day:      decimal.NewFromFloat(payload.Price.Day),
			Week:     decimal.NewFromFloat(payload.Price.Week),
			TwoWeeks: decimal.NewFromFloat(payload.Price.TwoWeeks),
		}
	}
	if payload.FixedPrice != nil {
		fixed := decimal.NewFromFloat(*payload.FixedPrice)
		patch.FixedPrice = &fixed
	}

	toy, err := a.catalog.UpdateToy(r.Context(), auth.ActorFrom(r.Context()), id, patch)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toy)
}

func (a *api) deleteToy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid toy ID")
		return
	}
	if err := a.catalog.DeleteToy(r.Context(), auth.ActorFrom(r.Context()), id); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemPayload struct {
	ToyID        int64                  `json:"toyId"`
	Type         models.TransactionKind `json:"type"`
	RentDuration models.RentDuration    `json:"rent_duration"`
	Quantity     int                    `json:"quantity"`
}

func (p addItemPayload) toInput() commerce.AddItemInput {
	return commerce.AddItemInput{
		ToyID:        p.ToyID,
		Kind:         p.Type,
		RentDuration: p.RentDuration,
		Quantity:     p.Quantity,
	}
}

func (a *api) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := a.cart.Cart(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (a *api) addCartItem(w http.ResponseWriter, r *http.Request) {
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cart, err := a.cart.AddItem(r.Context(), auth.ActorFrom(r.Context()), payload.toInput())
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, cart)
}

func (a *api) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid cart item ID")
		return
	}
	cart, err := a.cart.RemoveItem(r.Context(), auth.ActorFrom(r.Context()), id)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

type checkoutPayload struct {
	ShippingAddress models.Address         `json:"shippingAddress"`
	TransactionType models.TransactionKind `json:"transaction_type"`
}

func (a *api) checkoutCart(w http.ResponseWriter, r *http.Request) {
	var payload checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := a.checkout.Checkout(r.Context(), auth.ActorFrom(r.Context()),
		payload.ShippingAddress, payload.TransactionType)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (a *api) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, next, err := a.lifecycle.Orders(r.Context(), auth.ActorFrom(r.Context()),
		r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &store.CursorPage{
		Items:      orders,
		NextCursor: next,
		HasMore:    next != "",
	})
}

func (a *api) approveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	order, err := a.lifecycle.ApproveOrder(r.Context(), auth.ActorFrom(r.Context()), id)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (a *api) createRequest(w http.ResponseWriter, r *http.Request) {
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := a.requests.CreateRequest(r.Context(), auth.ActorFrom(r.Context()), payload.toInput())
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (a *api) listMyRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := a.requests.MyRequests(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

func (a *api) listRequestsGrouped(w http.ResponseWriter, r *http.Request) {
	groups, err := a.lifecycle.AllRequestsGrouped(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (a *api) updateRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var payload struct {
		Status models.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := auth.ActorFrom(r.Context())
	var req *models.Request
	switch payload.Status {
	case models.RequestStatusApproved:
		req, err = a.lifecycle.ApproveRequest(r.Context(), actor, id)
	case models.RequestStatusRejected:
		req, err = a.lifecycle.RejectRequest(r.Context(), actor, id)
	default:
		respondError(w, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (a *api) batchUpdateRequests(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Owner  string               `json:"owner"`
		Status models.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := a.lifecycle.BatchUpdateRequests(r.Context(), auth.ActorFrom(r.Context()),
		payload.Owner, payload.Status)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	// Partial failure is an expected outcome; the result reports both sides.
	respondJSON(w, http.StatusOK, result)
}

func (a *api) listTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := a.lifecycle.Transactions(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, commerce.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, commerce.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, commerce.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, commerce.ErrAlreadyTerminal),
		errors.Is(err, commerce.ErrInvalidTransition),
		errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrOptimisticLockFailed):
		return http.StatusConflict
	case errors.Is(err, commerce.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, commerce.ErrInvalidKind),
		errors.Is(err, commerce.ErrInvalidDuration),
		errors.Is(err, commerce.ErrMissingDuration),
		errors.Is(err, commerce.ErrNotRentable),
		errors.Is(err, commerce.ErrNotSaleable),
		errors.Is(err, commerce.ErrEmptyCart),
		errors.Is(err, commerce.ErrInvalidAddress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
