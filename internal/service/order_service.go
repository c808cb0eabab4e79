package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/repository"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// PlaceOrder records one order with all its lines, or nothing.
func (s *OrderService) PlaceOrder(ctx context.Context, req *domain.CheckoutRequest) (int64, error) {
	if req == nil {
		return 0, domain.NewValidationError("userId", "cart")
	}
	if err := validateCheckout(req); err != nil {
		return 0, err
	}

	payment := strings.TrimSpace(req.PaymentMethod)
	if payment == "" {
		payment = domain.DefaultPaymentMethod
	}

	order := &domain.Order{
		UserID:        req.UserID,
		TotalAmount:   req.Total,
		PaymentMethod: payment,
		Items:         make([]domain.OrderItem, 0, len(req.Cart)),
	}
	for _, line := range req.Cart {
		order.Items = append(order.Items, domain.OrderItem{
			ProductName: line.Name,
			Price:       line.Price,
			Quantity:    line.Quantity,
		})
	}

	log := logger.FromContext(ctx).With(zap.Int64("user_id", req.UserID))

	id, err := s.orders.CreateOrder(ctx, order)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUserNotFound):
		return 0, domain.NewNotFound("user not found")
	case errors.Is(err, repository.ErrOrderItemsFailed):
		log.Error("order items failed, transaction rolled back", zap.Error(err))
		return 0, domain.NewPartialWrite("order could not be saved, no changes were saved", err)
	default:
		log.Error("order write failed", zap.Error(err))
		return 0, domain.NewConnectivity("could not save order", err)
	}

	log.Info("order recorded",
		zap.Int64("order_id", id),
		zap.String("code", domain.OrderCode(id)),
		zap.String("total", order.TotalAmount.String()),
		zap.Int("lines", len(order.Items)))
	return id, nil
}

// History returns the user's orders newest first; never nil.
func (s *OrderService) History(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError("userId")
	}

	orders, err := s.orders.ListOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewConnectivity("could not load orders", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Store limits: quantity and user_id are INTEGER, money is NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

const (
	maxProductName   = 255
	maxPaymentMethod = 50
)

func validateCheckout(req *domain.CheckoutRequest) error {
	var fields []string
	if req.UserID <= 0 || req.UserID > math.MaxInt32 {
		fields = append(fields, "userId")
	}
	if len(req.Cart) == 0 {
		fields = append(fields, "cart")
	}

	total := decimal.Zero
	linesOK := true
	for _, line := range req.Cart {
		if !validLine(line) {
			linesOK = false
			continue
		}
		total = total.Add(line.Subtotal())
	}
	if !linesOK {
		fields = append(fields, "cart.items")
	}
	if linesOK && len(req.Cart) > 0 && (!req.Total.Equal(total) || !validAmount(req.Total)) {
		fields = append(fields, "total")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.PaymentMethod)) > maxPaymentMethod {
		fields = append(fields, "paymentMethod")
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}

func validLine(line domain.CartLine) bool {
	name := strings.TrimSpace(line.Name)
	return line.Quantity >= 1 && line.Quantity <= math.MaxInt32 &&
		name != "" && utf8.RuneCountInString(line.Name) <= maxProductName &&
		validAmount(line.Price)
}

// validAmount reports whether d fits NUMERIC(10,2) without rounding.
func validAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(maxAmount) && d.Equal(d.Truncate(2))
}
