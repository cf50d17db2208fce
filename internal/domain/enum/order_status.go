package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderStatus represents the lifecycle status of a purchase order.
// Only draft orders may have their lines, supplier, site or attached
// devis mutated; every other status is a read-only snapshot.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusOrdered   OrderStatus = "ordered"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusOrdered, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// IsEditable reports whether the order may still be mutated.
func (s OrderStatus) IsEditable() bool {
	return s == OrderStatusDraft
}

// CanTransitionTo reports whether the forward transition s -> target is
// allowed. Transitions only move forward; there is no way back to draft.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusOrdered || target == OrderStatusCancelled
	case OrderStatusOrdered:
		return target == OrderStatusReceived || target == OrderStatusCancelled
	}
	return false
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = OrderStatus(str)
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusDraft
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(string(v))
	}
	return nil
}
