package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOrdered, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type MoveTo string

const (
	MoveToPickupPoint     MoveTo = "pickup_point"
	MoveToCustomerAddress MoveTo = "customer_address"
)

func (m MoveTo) Valid() bool {
	return m == MoveToPickupPoint || m == MoveToCustomerAddress
}

type PaymentConditions string

const (
	PaymentWaiting        PaymentConditions = "waiting"
	PaymentPaid           PaymentConditions = "paid"
	PaymentCashOnDelivery PaymentConditions = "cash_on_delivery"
	PaymentCardOnDelivery PaymentConditions = "card_on_delivery"
)

func (p PaymentConditions) Valid() bool {
	switch p {
	case PaymentWaiting, PaymentPaid, PaymentCashOnDelivery, PaymentCardOnDelivery:
		return true
	}
	return false
}

// OrderLine is a normalized point-in-time copy of one cart item, independent
// of which cart backend produced it.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is immutable once placed: content columns are frozen copies of the
// cart, person and address at placement time. Guest orders carry no UserID.
type Order struct {
	ID                uuid.UUID         `json:"id"`
	UserID            *int64            `json:"user_id,omitempty"`
	Phonenumber       string            `json:"phonenumber"`
	TotalCost         decimal.Decimal   `json:"total_cost"`
	OrderContent      []OrderLine       `json:"order_content,omitempty"`
	PersonContent     PersonSnapshot    `json:"person_content,omitempty"`
	AddressContent    AddressSnapshot   `json:"address_content,omitempty"`
	TimePlaced        time.Time         `json:"time_placed"`
	TimeDelivered     *time.Time        `json:"time_delivered,omitempty"`
	MoveTo            MoveTo            `json:"move_to"`
	PaymentConditions PaymentConditions `json:"payment_conditions"`
	Status            OrderStatus       `json:"status"`
}
