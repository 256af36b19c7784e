package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"order-manager/internal/catalog"
	"order-manager/internal/domain"
	"order-manager/internal/queue"
	"order-manager/internal/repo"
)

// DefaultCourier is assigned when a submission carries no courier.
const DefaultCourier = "Rowney"

// Store is the persistence surface the order service needs.
type Store interface {
	InsertOrder(ctx context.Context, order repo.Order) (*repo.Order, error)
	GetOrder(ctx context.Context, id int64) (*repo.Order, error)
	UpdateOrder(ctx context.Context, id int64, upd repo.OrderUpdate) (*repo.Order, error)
	ReplaceOrder(ctx context.Context, order repo.Order) (*repo.Order, error)
	GetWebsiteName(ctx context.Context, id int64) (*string, error)
}

// Service owns the order state machine. Every mutation path funnels through
// it, so the completed/returned product-link guard lives in exactly one
// place.
type Service struct {
	store    Store
	resolver *catalog.Resolver
	broker   queue.Broker
	logger   *slog.Logger
}

// NewService wires the order service.
func NewService(store Store, resolver *catalog.Resolver, broker queue.Broker, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		broker:   broker,
		logger:   logger.With("component", "orders"),
	}
}

// CreateInput carries a new order. ProductID/SKU/ProductName feed identity
// resolution; the stored product name is the canonical one when resolution
// succeeds.
type CreateInput struct {
	WebsiteID    int64
	ProductID    *int64
	SKU          string
	ProductName  string
	FormID       *string
	EntryID      *string
	CustomerName string
	Phone        string
	AltPhone     *string
	Email        *string
	County       *string
	Location     *string
	Pieces       int
	Courier      *string
	Status       string
	Notes        *string
}

// Create inserts an order and enqueues exactly one new-order notification
// after the insert commits. A broker failure surfaces to the caller; the
// order itself is already stored.
func (s *Service) Create(ctx context.Context, in CreateInput) (*repo.Order, error) {
	if in.WebsiteID == 0 {
		return nil, domain.Validation("website_id is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, domain.Validation("customer_name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, domain.Validation("phone is required")
	}

	status := StatusPending
	if in.Status != "" {
		parsed, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	productID, productName, err := s.resolve(ctx, catalog.Identifiers{
		ProductID:   in.ProductID,
		SKU:         in.SKU,
		ProductName: in.ProductName,
	}, in.ProductName)
	if err != nil {
		return nil, err
	}

	if status.RequiresProductLink() && productID == nil {
		return nil, domain.Conflict("Cannot complete or return order without SKU/product link")
	}

	pieces := in.Pieces
	if pieces < 1 {
		pieces = 1
	}
	courier := in.Courier
	if courier == nil || strings.TrimSpace(*courier) == "" {
		c := DefaultCourier
		courier = &c
	}

	order := repo.Order{
		WebsiteID:    in.WebsiteID,
		ProductID:    productID,
		FormID:       in.FormID,
		EntryID:      in.EntryID,
		ProductName:  productName,
		CustomerName: &in.CustomerName,
		Phone:        &in.Phone,
		AltPhone:     in.AltPhone,
		Email:        in.Email,
		County:       in.County,
		Location:     in.Location,
		Pieces:       pieces,
		Courier:      courier,
		Status:       string(status),
		Notes:        in.Notes,
	}

	inserted, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	websiteName := "N/A"
	if name, err := s.store.GetWebsiteName(ctx, inserted.WebsiteID); err != nil {
		s.logger.Warn("failed looking up website name", "website_id", inserted.WebsiteID, "error", err)
	} else if name != nil {
		websiteName = *name
	}

	if err := s.enqueueNewOrder(ctx, inserted, websiteName); err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateInput carries a partial mutation; nil means "leave untouched".
type UpdateInput struct {
	Status          *string
	RescheduledDate *time.Time
	Notes           *string
	AmountKES       *float64
	Courier         *string
	ProductID       *int64
	SKU             string
	ProductName     *string
}

// Update applies a partial mutation after re-resolving the product link from
// the request's identifiers, falling back to the order's stored ones. The
// guard runs before any write.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*repo.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := catalog.Identifiers{SKU: in.SKU}
	if in.ProductID != nil {
		ids.ProductID = in.ProductID
	} else {
		ids.ProductID = current.ProductID
	}
	if in.ProductName != nil {
		ids.ProductName = *in.ProductName
	} else if current.ProductName != nil {
		ids.ProductName = *current.ProductName
	}

	productID, productName, err := s.resolve(ctx, ids, ids.ProductName)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		target, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		if err := ValidateTransition(Status(current.Status), target); err != nil {
			return nil, err
		}
		if target.RequiresProductLink() && productID == nil {
			return nil, domain.Conflict("Cannot complete or return order without SKU/product link")
		}
	}

	upd := repo.OrderUpdate{
		Status:          in.Status,
		RescheduledDate: in.RescheduledDate,
		Notes:           in.Notes,
		AmountKES:       in.AmountKES,
		Courier:         in.Courier,
		ProductID:       productID,
	}
	if productID != nil {
		upd.ProductName = productName
	}

	return s.store.UpdateOrder(ctx, id, upd)
}

// ReplaceInput carries a full-replace mutation; every field is required and
// overwritten.
type ReplaceInput struct {
	WebsiteID       int64
	ProductID       *int64
	SKU             string
	ProductName     string
	FormID          *string
	EntryID         *string
	CustomerName    string
	Phone           string
	AltPhone        *string
	Email           *string
	County          *string
	Location        *string
	Pieces          int
	AmountKES       *float64
	Status          string
	RescheduledDate *time.Time
	Notes           *string
	Courier         *string
}

// Replace overwrites every mutable field of an order. The product link is
// resolved from the request identifiers only.
func (s *Service) Replace(ctx context.Context, id int64, in ReplaceInput) (*repo.Order, error) {
	if in.WebsiteID == 0 {
		return nil, domain.Validation("website_id is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, domain.Validation("customer_name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, domain.Validation("phone is required")
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(Status(current.Status), status); err != nil {
		return nil, err
	}

	productID, productName, err := s.resolve(ctx, catalog.Identifiers{
		ProductID:   in.ProductID,
		SKU:         in.SKU,
		ProductName: in.ProductName,
	}, in.ProductName)
	if err != nil {
		return nil, err
	}
	if status.RequiresProductLink() && productID == nil {
		return nil, domain.Conflict("Cannot complete or return order without SKU/product link")
	}

	order := repo.Order{
		ID:              id,
		WebsiteID:       in.WebsiteID,
		ProductID:       productID,
		FormID:          in.FormID,
		EntryID:         in.EntryID,
		ProductName:     productName,
		CustomerName:    &in.CustomerName,
		Phone:           &in.Phone,
		AltPhone:        in.AltPhone,
		Email:           in.Email,
		County:          in.County,
		Location:        in.Location,
		Pieces:          in.Pieces,
		AmountKES:       in.AmountKES,
		Status:          string(status),
		RescheduledDate: in.RescheduledDate,
		Notes:           in.Notes,
		Courier:         in.Courier,
	}

	return s.store.ReplaceOrder(ctx, order)
}

// resolve maps identifiers to (product id, display name). When resolution
// succeeds the canonical catalog name replaces the caller-supplied one;
// otherwise the supplied name is kept for display.
func (s *Service) resolve(ctx context.Context, ids catalog.Identifiers, fallbackName string) (*int64, *string, error) {
	productID, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	if productID != nil {
		name, err := s.resolver.NameOf(ctx, productID)
		if err != nil {
			return nil, nil, err
		}
		if name != nil {
			return productID, name, nil
		}
	}

	if name := strings.TrimSpace(fallbackName); name != "" {
		return productID, &name, nil
	}
	return productID, nil, nil
}

func (s *Service) enqueueNewOrder(ctx context.Context, order *repo.Order, websiteName string) error {
	payload := queue.NewOrderPayload{
		Order: queue.OrderInfo{
			ID:           order.ID,
			ProductName:  order.ProductName,
			CustomerName: order.CustomerName,
			Phone:        order.Phone,
			AltPhone:     order.AltPhone,
			Email:        order.Email,
			County:       order.County,
			Location:     order.Location,
			Pieces:       order.Pieces,
			CreatedAt:    order.CreatedAt,
		},
		Website: websiteName,
	}
	job, err := queue.NewJob(queue.KindNewOrder, payload)
	if err != nil {
		return err
	}
	if err := s.broker.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue new-order notification: %w", err)
	}
	return nil
}
