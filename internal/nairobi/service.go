package nairobi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"order-manager/internal/domain"
	"order-manager/internal/phone"
	"order-manager/internal/queue"
	"order-manager/internal/repo"
)

// Store is the persistence surface the same-day service needs.
type Store interface {
	InsertNairobiOrder(ctx context.Context, order repo.NairobiOrder) (*repo.NairobiOrder, error)
	GetNairobiOrder(ctx context.Context, id int64) (*repo.NairobiOrder, error)
	ListNairobiOrders(ctx context.Context, status string) ([]repo.NairobiOrder, error)
	ClaimNairobiOrder(ctx context.Context, id int64, riderName, riderPhone string) (*repo.NairobiOrder, error)
	SetNairobiOrderDelivered(ctx context.Context, id int64) (*repo.NairobiOrder, error)
	ResetNairobiOrder(ctx context.Context, id int64) (*repo.NairobiOrder, error)
}

// Service drives the same-day claim workflow. Customer phone and full name
// never leave through a broadcast; they travel only on the assignment job
// sent to the single claiming rider.
type Service struct {
	store  Store
	broker queue.Broker
	logger *slog.Logger
}

func NewService(store Store, broker queue.Broker, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		broker: broker,
		logger: logger.With("component", "nairobi"),
	}
}

// CreateInput carries a new same-day order.
type CreateInput struct {
	CustomerFirstName string
	CustomerFullName  *string
	Phone             *string
	AltPhone          *string
	Address           string
	Product           string
	AmountPayable     *float64
}

// Create stores a same-day order and enqueues one rider broadcast after the
// insert commits. The broadcast payload carries the public-safe fields only.
func (s *Service) Create(ctx context.Context, in CreateInput) (*repo.NairobiOrder, error) {
	if strings.TrimSpace(in.CustomerFirstName) == "" {
		return nil, domain.Validation("customer_first_name is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, domain.Validation("address is required")
	}
	if strings.TrimSpace(in.Product) == "" {
		return nil, domain.Validation("product is required")
	}

	order := repo.NairobiOrder{
		CustomerFirstName: strings.TrimSpace(in.CustomerFirstName),
		CustomerFullName:  in.CustomerFullName,
		Phone:             normalizeOptional(in.Phone),
		AltPhone:          normalizeOptional(in.AltPhone),
		Address:           strings.TrimSpace(in.Address),
		Product:           strings.TrimSpace(in.Product),
		AmountPayable:     in.AmountPayable,
	}

	inserted, err := s.store.InsertNairobiOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	payload := queue.NairobiBroadcastPayload{Order: publicInfo(inserted)}
	job, err := queue.NewJob(queue.KindNairobiBroadcast, payload)
	if err != nil {
		return nil, err
	}
	if err := s.broker.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue nairobi broadcast: %w", err)
	}
	return inserted, nil
}

// Get retrieves a same-day order by id.
func (s *Service) Get(ctx context.Context, id int64) (*repo.NairobiOrder, error) {
	return s.store.GetNairobiOrder(ctx, id)
}

// List returns same-day orders, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]repo.NairobiOrder, error) {
	if status != "" {
		if _, err := ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.store.ListNairobiOrders(ctx, status)
}

// Claim assigns an unassigned order to a rider identified by phone; the name
// is optional. The first claim wins; a second claim is reported as a conflict
// without touching the assignment. On success one assignment job addressed to
// the rider is enqueued.
func (s *Service) Claim(ctx context.Context, id int64, riderName, riderPhone string) (*repo.NairobiOrder, error) {
	riderName = strings.TrimSpace(riderName)
	normalized := phone.Normalize(riderPhone)
	if normalized == "" {
		return nil, domain.Validation("rider phone is required")
	}

	claimed, err := s.store.ClaimNairobiOrder(ctx, id, riderName, normalized)
	if err != nil {
		return nil, err
	}

	payload := queue.NairobiAssignmentPayload{
		Order:     fullInfo(claimed),
		RiderName: riderName,
		Recipient: normalized,
	}
	job, err := queue.NewJob(queue.KindNairobiAssignment, payload)
	if err != nil {
		return nil, err
	}
	if err := s.broker.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue nairobi assignment: %w", err)
	}
	return claimed, nil
}

// SetStatus moves an order to delivered or back to unassigned. Assignment
// never happens through here; it goes through Claim.
func (s *Service) SetStatus(ctx context.Context, id int64, raw string) (*repo.NairobiOrder, error) {
	status, err := ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	switch status {
	case StatusDelivered:
		return s.store.SetNairobiOrderDelivered(ctx, id)
	case StatusUnassigned:
		return s.store.ResetNairobiOrder(ctx, id)
	}
	return nil, domain.Validation("status must be delivered or unassigned; use the assign endpoint to assign a rider")
}

// publicInfo projects the fields safe to broadcast to the whole rider pool.
func publicInfo(order *repo.NairobiOrder) queue.NairobiOrderInfo {
	return queue.NairobiOrderInfo{
		ID:                order.ID,
		CustomerFirstName: order.CustomerFirstName,
		Address:           order.Address,
		Product:           order.Product,
		AmountPayable:     order.AmountPayable,
	}
}

// fullInfo projects everything the claiming rider needs to deliver.
func fullInfo(order *repo.NairobiOrder) queue.NairobiOrderInfo {
	return queue.NairobiOrderInfo{
		ID:                order.ID,
		CustomerFirstName: order.CustomerFirstName,
		CustomerFullName:  order.CustomerFullName,
		Phone:             order.Phone,
		AltPhone:          order.AltPhone,
		Address:           order.Address,
		Product:           order.Product,
		AmountPayable:     order.AmountPayable,
	}
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	n := phone.Normalize(*raw)
	if n == "" {
		return nil
	}
	return &n
}
