package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Allengabo/Yankicks-web/internal/cart"
	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/session"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EmptyHistoryMessage = "You have no order history yet."

type OrderClient interface {
	Checkout(ctx context.Context, req *domain.CheckoutRequest) (int64, error)
	Orders(ctx context.Context, userID int64) ([]domain.Order, error)
}

// ShippingDetails are collected by the checkout form. They are required but
// the backend does not store them.
type ShippingDetails struct {
	FullName string
	Address  string
}

type Result struct {
	OrderID int64
	Code    string
	Total   decimal.Decimal
}

type HistoryView struct {
	Orders       []domain.Order
	Empty        bool
	EmptyMessage string
}

// Flow drives one shopper's checkout against the order API.
type Flow struct {
	mu     sync.Mutex
	cart   *cart.Engine
	gate   *session.Gate
	client OrderClient
	status domain.CheckoutStatus
	// submitting guards against a second Submit while one is in flight
	submitting bool
}

func NewFlow(c *cart.Engine, gate *session.Gate, client OrderClient) *Flow {
	return &Flow{
		cart:   c,
		gate:   gate,
		client: client,
		status: domain.CheckoutStatusIdle,
	}
}

func (f *Flow) Status() domain.CheckoutStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Submit places an order for the current cart. On success the cart is
// cleared; on any failure it is left exactly as it was.
func (f *Flow) Submit(ctx context.Context, details ShippingDetails, paymentMethod string) (*Result, error) {
	user, err := f.gate.RequireSession("checkout")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, cart.ErrCartLocked
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if err := f.transition(domain.CheckoutStatusValidating); err != nil {
		return nil, err
	}

	lines := f.cart.Lines()
	var missing []string
	if len(lines) == 0 {
		missing = append(missing, "cart")
	}
	if strings.TrimSpace(details.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(details.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		f.fail()
		return nil, domain.NewValidationError(missing...)
	}

	if strings.TrimSpace(paymentMethod) == "" {
		paymentMethod = domain.DefaultPaymentMethod
	}

	f.cart.Freeze()
	defer f.cart.Unfreeze()
	if err := f.transition(domain.CheckoutStatusSubmitting); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With(zap.Int64("user_id", user.ID))

	// re-read under freeze so the submitted lines are exactly what gets cleared
	lines = f.cart.Lines()
	total := cart.Total(lines)
	orderID, err := f.client.Checkout(ctx, &domain.CheckoutRequest{
		UserID:        user.ID,
		Cart:          lines,
		Total:         total,
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		f.fail()
		log.Warn("checkout failed", zap.Error(err))
		return nil, err
	}

	if err := f.transition(domain.CheckoutStatusRecorded); err != nil {
		return nil, err
	}
	if err := f.cart.Clear(ctx); err != nil {
		// the order exists; a stale cart is the lesser problem
		log.Error("order recorded but cart could not be cleared", zap.Int64("order_id", orderID), zap.Error(err))
	}

	log.Info("order placed", zap.Int64("order_id", orderID), zap.String("total", total.String()))
	return &Result{
		OrderID: orderID,
		Code:    domain.OrderCode(orderID),
		Total:   total,
	}, nil
}

// History loads the logged in user's orders, newest first.
func (f *Flow) History(ctx context.Context) (*HistoryView, error) {
	user, err := f.gate.RequireSession("view your orders")
	if err != nil {
		return nil, err
	}

	orders, err := f.client.Orders(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	view := &HistoryView{Orders: orders}
	if len(orders) == 0 {
		view.Orders = []domain.Order{}
		view.Empty = true
		view.EmptyMessage = EmptyHistoryMessage
	}
	return view, nil
}

func (f *Flow) transition(to domain.CheckoutStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !domain.CanTransitionTo(f.status, to) {
		return fmt.Errorf("invalid checkout transition %s -> %s", f.status, to)
	}
	f.status = to
	return nil
}

func (f *Flow) fail() {
	f.mu.Lock()
	f.status = domain.CheckoutStatusFailed
	f.mu.Unlock()
}
