package domain

import "time"

// Driver represents a delivery driver rides are assigned to.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
