// Package model defines the core domain models used throughout the application.
package model

import "time"

// Category is the product group an order was sold under.
type Category string

// Recognized pass categories, as they appear in the payment export.
const (
	// CategoryTimePass is an hour-quota product (e.g. "50시간").
	CategoryTimePass Category = "정액시간권"
	// CategoryTermPass is a calendar-window product (e.g. "4주") with explicit dates.
	CategoryTermPass Category = "기간권"
	// CategoryLocker is a locker rental with explicit dates. It is not
	// classified but has its own timeline.
	CategoryLocker Category = "사물함"
)

// IsPass reports whether the category is one the classifier understands.
func (c Category) IsPass() bool {
	return c == CategoryTimePass || c == CategoryTermPass
}

// Order is a single paid row from a payment export.
type Order struct {
	Timestamp     time.Time
	AmountErr     error // set when the exported amount was not an integer
	RowID         string
	Name          string
	Category      Category
	Description   string
	Status        string
	PaymentMethod string
	OrderType     string
	Amount        int64
	ListAmount    int64
	Discount      int64
}

// Date returns the calendar date the order was paid on.
func (o *Order) Date() time.Time {
	y, m, d := o.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, o.Timestamp.Location())
}
