package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags a notification job with the renderer that handles it.
type Kind string

const (
	KindNewOrder          Kind = "new-order"
	KindNairobiBroadcast  Kind = "nairobi-broadcast"
	KindNairobiAssignment Kind = "nairobi-assignment"
	KindAdminNotification Kind = "admin-notification"
)

// Job is a unit of queued notification work. Jobs are self-contained and
// carry no ordering guarantee across orders; delivery is at-least-once.
type Job struct {
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Broker is the producer/consumer contract between the API and the
// notification worker. Enqueue must only be called after the corresponding
// database write has committed, so a job can never reference a row that does
// not exist.
type Broker interface {
	Enqueue(ctx context.Context, job Job) error
	Consume(ctx context.Context) (*Job, error)
}

// NewJob builds a Job of the given kind around a JSON payload.
func NewJob(kind Kind, payload any) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Job{Kind: kind, Payload: data, EnqueuedAt: time.Now().UTC()}, nil
}

// OrderInfo is the order snapshot embedded in new-order jobs.
type OrderInfo struct {
	ID           int64     `json:"id"`
	ProductName  *string   `json:"product_name,omitempty"`
	CustomerName *string   `json:"customer_name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	AltPhone     *string   `json:"alt_phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	County       *string   `json:"county,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Pieces       int       `json:"pieces"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewOrderPayload notifies staff that an order arrived.
type NewOrderPayload struct {
	Order      OrderInfo `json:"order"`
	Website    string    `json:"website"`
	Recipients []string  `json:"recipients,omitempty"`
}

// NairobiOrderInfo is the same-day order snapshot carried by broadcast and
// assignment jobs. Broadcasts carry only the public-safe fields; the full
// PII fields are populated solely on assignment jobs.
type NairobiOrderInfo struct {
	ID                int64    `json:"id"`
	CustomerFirstName string   `json:"customer_first_name"`
	CustomerFullName  *string  `json:"customer_full_name,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	AltPhone          *string  `json:"alt_phone,omitempty"`
	Address           string   `json:"address"`
	Product           string   `json:"product"`
	AmountPayable     *float64 `json:"amount_payable,omitempty"`
}

// NairobiBroadcastPayload announces an unassigned same-day order to riders.
type NairobiBroadcastPayload struct {
	Order      NairobiOrderInfo `json:"order"`
	Recipients []string         `json:"recipients,omitempty"`
}

// NairobiAssignmentPayload notifies the single claiming rider, with the full
// customer details needed to deliver.
type NairobiAssignmentPayload struct {
	Order     NairobiOrderInfo `json:"order"`
	RiderName string           `json:"rider_name,omitempty"`
	Recipient string           `json:"recipient"`
}

// AdminNotificationPayload carries a free-form operator message.
type AdminNotificationPayload struct {
	Subject    string   `json:"subject,omitempty"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients,omitempty"`
}
