package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderCodePrefix      = "YK-2024-"
	DefaultPaymentMethod = "Credit Card"
)

type OrderStatus string

// OrderStatusPending is the store default for a new order. Nothing in the
// storefront moves an order past it.
const OrderStatusPending OrderStatus = "Pending"

// OrderItem keeps the product name and price as they were at checkout.
type OrderItem struct {
	OrderID     int64           `json:"order_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"order_date"`
	Items         []OrderItem     `json:"items"`
}

func (o Order) Code() string {
	return OrderCode(o.ID)
}

// OrderCode is the customer facing order number. It is never stored.
func OrderCode(id int64) string {
	return OrderCodePrefix + strconv.FormatInt(id, 10)
}

type CheckoutRequest struct {
	UserID        int64           `json:"userId"`
	Cart          []CartLine      `json:"cart"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
}

type CheckoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}
