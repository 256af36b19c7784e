package orders

import (
	"fmt"

	"order-manager/internal/domain"
)

// Status enumerates the order lifecycle. Transitions are always requested
// explicitly through an update; they are never inferred.
type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
	StatusCompleted   Status = "completed"
	StatusReturned    Status = "returned"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusPending, StatusApproved, StatusCancelled, StatusRescheduled, StatusCompleted, StatusReturned:
		return s, nil
	}
	return "", domain.Validation(fmt.Sprintf("unknown order status %q", raw))
}

// Terminal reports whether the status ends the lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusReturned:
		return true
	}
	return false
}

// RequiresProductLink reports whether the status drives financial reporting
// and therefore needs a resolved product id.
func (s Status) RequiresProductLink() bool {
	return s == StatusCompleted || s == StatusReturned
}

// ValidateTransition is consulted by every mutation path that can change
// status. Pending, approved and rescheduled orders may move to any state
// (rescheduling loops included); terminal orders are frozen.
func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if from.Terminal() {
		return domain.Conflict(fmt.Sprintf("order is already %s and cannot change status", from))
	}
	return nil
}
