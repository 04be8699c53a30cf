package domain

import (
	"strings"
	"time"
)

// Order represents a delivery order as consumed by ride planning. The full
// order entity (items, pricing, invoicing) lives in the storefront; this is
// the slice the dispatch core reads and whose address fields it watches.
type Order struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	Street        string
	City          string
	Zip           string
	Note          string
	IsPaid        bool
	ItemsCount    int
	CreatedAt     time.Time
}

// DeliveryAddress renders the single-line address sent to the optimizer.
func (o *Order) DeliveryAddress() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Street, o.Zip, o.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
