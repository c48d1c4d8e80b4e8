package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/odg-delivery/console/internal/api"
	"github.com/odg-delivery/console/internal/storage"
)

var ErrNoVendor = errors.New("no vendor selected")

// Order statuses a vendor can set
const (
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// VendorRef is a vendor as listed by GET /vendors
type VendorRef struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

// VendorOrder is an order in a vendor's queue
type VendorOrder struct {
	ID           int64  `json:"id" validate:"required"`
	UserID       int64  `json:"user_id"`
	Status       string `json:"status" validate:"required"`
	TotalCents   int64  `json:"total_cents"`
	CreatedAt    string `json:"created_at"`
	StudentName  string `json:"student_name,omitempty"`
	StudentPhone string `json:"student_phone,omitempty"`
}

// Customer is what the vendor sees of the student who ordered
func (o VendorOrder) Customer() string {
	if o.StudentName != "" {
		return o.StudentName
	}
	return fmt.Sprintf("Customer #%d", o.UserID)
}

// OrderStatusRequest moves an order to a new status. Reason is sent only
// for cancellations.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=preparing ready completed cancelled"`
	Reason string `json:"reason,omitempty"`
}

// MenuItem is an item on a vendor's menu
type MenuItem struct {
	ID          int64   `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	IsAvailable int     `json:"is_available"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

// Available reports the is_available flag, which the API sends as 0 or 1
func (m MenuItem) Available() bool {
	return m.IsAvailable == 1
}

// MenuItemRequest creates or replaces a menu item
type MenuItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents" validate:"gte=0"`
	ImageURL    *string `json:"image_url"`
	IsAvailable bool    `json:"is_available"`
}

// VendorStats is the vendor's sales summary
type VendorStats struct {
	OrdersCount    int64 `json:"orders_count"`
	GrossCents     int64 `json:"gross_cents"`
	CompletedCents int64 `json:"completed_cents"`
	TodayOrders    int64 `json:"today_orders"`
	TodayCents     int64 `json:"today_cents"`
}

// Rating is a student's feedback on a vendor
type Rating struct {
	Rating  int     `json:"rating" validate:"gte=1,lte=5"`
	Comment *string `json:"comment"`
	Name    string  `json:"name"`
}

// Category groups menu items
type Category struct {
	ID        int64  `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	SortIndex int    `json:"sort_index"`
}

type categoryRequest struct {
	VendorID int64  `json:"vendorId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required"`
}

// ListVendors returns the vendors the caller can manage
func (s *Service) ListVendors(ctx context.Context) ([]VendorRef, error) {
	return api.Get[[]VendorRef](ctx, s.client, "/vendors")
}

// ResolveVendorID picks the vendor to operate on. A configured id wins, then
// the one remembered in the store, then the first vendor the API lists,
// which is remembered for next time.
func (s *Service) ResolveVendorID(ctx context.Context, configured int64, store storage.Store) (int64, error) {
	if configured > 0 {
		return configured, nil
	}

	if stored, ok, err := store.Get(storage.KeyVendorID); err != nil {
		return 0, fmt.Errorf("failed to load vendor id: %w", err)
	} else if ok {
		if id, err := strconv.ParseInt(stored, 10, 64); err == nil && id > 0 {
			return id, nil
		}
		s.logger.Warn().Str("vendor_id", stored).Msg("Ignoring invalid stored vendor id")
	}

	vendors, err := s.ListVendors(ctx)
	if err != nil {
		return 0, err
	}
	if len(vendors) == 0 {
		return 0, ErrNoVendor
	}

	id := vendors[0].ID
	if err := store.Set(storage.KeyVendorID, strconv.FormatInt(id, 10)); err != nil {
		return 0, fmt.Errorf("failed to save vendor id: %w", err)
	}
	s.logger.Debug().Int64("vendor_id", id).Msg("Selected first vendor")

	return id, nil
}

// VendorOrders returns the vendor's order queue
func (s *Service) VendorOrders(ctx context.Context, vendorID int64) ([]VendorOrder, error) {
	return api.Get[[]VendorOrder](ctx, s.client, fmt.Sprintf("/vendors/%d/orders", vendorID))
}

// UpdateOrderStatus moves an order along. A reason given for any status
// other than cancelled is dropped.
func (s *Service) UpdateOrderStatus(ctx context.Context, vendorID, orderID int64, status, reason string) error {
	req := OrderStatusRequest{Status: status}
	if status == StatusCancelled {
		req.Reason = reason
	}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, fmt.Sprintf("/vendors/%d/orders/%d/status", vendorID, orderID), req)
}

// Menu returns the vendor's menu
func (s *Service) Menu(ctx context.Context, vendorID int64) ([]MenuItem, error) {
	return api.Get[[]MenuItem](ctx, s.client, fmt.Sprintf("/vendors/%d/menu", vendorID))
}

// CreateMenuItem adds an item to the menu
func (s *Service) CreateMenuItem(ctx context.Context, vendorID int64, req MenuItemRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, fmt.Sprintf("/vendors/%d/menu", vendorID), req)
}

// UpdateMenuItem replaces a menu item
func (s *Service) UpdateMenuItem(ctx context.Context, vendorID, itemID int64, req MenuItemRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.client.Do(ctx, http.MethodPut, fmt.Sprintf("/vendors/%d/menu/%d", vendorID, itemID), req, nil)
}

// DeleteMenuItem removes a menu item
func (s *Service) DeleteMenuItem(ctx context.Context, vendorID, itemID int64) error {
	return s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/vendors/%d/menu/%d", vendorID, itemID), nil, nil)
}

// Stats returns the vendor's sales summary
func (s *Service) Stats(ctx context.Context, vendorID int64) (VendorStats, error) {
	return api.Get[VendorStats](ctx, s.client, fmt.Sprintf("/vendors/%d/stats", vendorID))
}

// Ratings returns student feedback for the vendor
func (s *Service) Ratings(ctx context.Context, vendorID int64) ([]Rating, error) {
	return api.Get[[]Rating](ctx, s.client, fmt.Sprintf("/vendors/%d/ratings", vendorID))
}

// Categories returns the vendor's menu categories
func (s *Service) Categories(ctx context.Context, vendorID int64) ([]Category, error) {
	return api.Get[[]Category](ctx, s.client, fmt.Sprintf("/vendors/%d/categories", vendorID))
}

// CreateCategory adds a menu category
func (s *Service) CreateCategory(ctx context.Context, vendorID int64, name string) error {
	req := categoryRequest{VendorID: vendorID, Name: name}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/vendors/categories", req)
}
