package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const MsgOrderPlaced = "Order placed successfully"

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *domain.CheckoutRequest) (int64, error)
	History(ctx context.Context, userID int64) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderPlacer
	timeout time.Duration
}

func NewOrdersHandler(orders OrderPlacer, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type CartLineDTO struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Rating   *float64        `json:"rating,omitempty"`
	Quantity int             `json:"quantity" validate:"min=1"`
}

type CheckoutRequestDTO struct {
	UserID        int64           `json:"userId" validate:"required,gt=0"`
	Cart          []CartLineDTO   `json:"cart" validate:"required,min=1,dive"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod" validate:"max=50"`
}

func (d *CheckoutRequestDTO) toDomain() *domain.CheckoutRequest {
	req := &domain.CheckoutRequest{
		UserID:        d.UserID,
		Total:         d.Total,
		PaymentMethod: d.PaymentMethod,
		Cart:          make([]domain.CartLine, 0, len(d.Cart)),
	}
	for _, l := range d.Cart {
		req.Cart = append(req.Cart, domain.CartLine{
			Product: domain.Product{
				ID:       l.ID,
				Name:     l.Name,
				Category: l.Category,
				Price:    l.Price,
				Image:    l.Image,
				Rating:   l.Rating,
			},
			Quantity: l.Quantity,
		})
	}
	return req
}

func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := decodeAndValidate(w, r, &req); err != nil {
		handleDomainError(w, r, err)
		return
	}

	orderID, err := h.orders.PlaceOrder(ctx, req.toDomain())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.CheckoutResponse{Message: MsgOrderPlaced, OrderID: orderID})
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		handleDomainError(w, r, domain.NewValidationError("userId"))
		return
	}

	orders, err := h.orders.History(ctx, userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}
