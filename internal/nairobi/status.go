package nairobi

import (
	"fmt"

	"order-manager/internal/domain"
)

// Status enumerates the same-day delivery lifecycle. There is no cancelled
// state; an abandoned order is reset back to unassigned instead.
type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusAssigned   Status = "assigned"
	StatusDelivered  Status = "delivered"
)

// ParseStatus validates a raw same-day status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusUnassigned, StatusAssigned, StatusDelivered:
		return s, nil
	}
	return "", domain.Validation(fmt.Sprintf("unknown nairobi order status %q", raw))
}
