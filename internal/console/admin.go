package console

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odg-delivery/console/internal/api"
)

// User is a platform account as listed by admins
type User struct {
	ID         int64  `json:"id" validate:"required"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	IsVerified int    `json:"is_verified"`
}

// Verified reports the is_verified flag, which the API sends as 0 or 1
func (u User) Verified() bool {
	return u.IsVerified == 1
}

// RiderDocument is an uploaded rider document awaiting review
type RiderDocument struct {
	ID           int64  `json:"id" validate:"required"`
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	DocumentType string `json:"document_type"`
	DocumentURL  string `json:"document_url"`
	Status       string `json:"status"`
}

// Order is an order row in the admin order list
type Order struct {
	ID         int64  `json:"id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	TotalCents int64  `json:"total_cents"`
	CreatedAt  string `json:"created_at"`
}

// ActiveOrder is an order still moving through the kitchen or delivery
type ActiveOrder struct {
	ID         int64  `json:"id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	TotalCents int64  `json:"total_cents"`
	RiderID    *int64 `json:"rider_id"`
	VendorName string `json:"vendor_name"`
	UserName   string `json:"user_name"`
	UserPhone  string `json:"user_phone"`
}

// Overview is the platform-wide analytics summary
type Overview struct {
	Orders          int64   `json:"orders"`
	Vendors         int64   `json:"vendors"`
	Riders          int64   `json:"riders"`
	Students        int64   `json:"students"`
	AvgDeliveryMins float64 `json:"avgDeliveryMins"`
}

// DayRow is one day of the orders-by-day report
type DayRow struct {
	Day        string `json:"d" validate:"required"`
	Orders     int64  `json:"orders"`
	GrossCents int64  `json:"gross_cents"`
}

// Setting is a platform key-value setting
type Setting struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// SupportMessage is a message in the admin support inbox
type SupportMessage struct {
	ID        int64  `json:"id" validate:"required"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Campaign audiences
const (
	AudienceStudents = "students"
	AudienceRiders   = "riders"
	AudienceVendors  = "vendors"
)

// CampaignRequest is a broadcast to one audience
type CampaignRequest struct {
	Audience string `json:"audience" validate:"required,oneof=students riders vendors"`
	Message  string `json:"message" validate:"required"`
}

// ListUsers returns every platform account
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return api.Get[[]User](ctx, s.client, "/admin/users")
}

// SetUserActive activates or deactivates an account
func (s *Service) SetUserActive(ctx context.Context, userID int64, active bool) error {
	action := "deactivate"
	if active {
		action = "activate"
	}
	return s.post(ctx, fmt.Sprintf("/admin/users/%d/%s", userID, action), nil)
}

// ResetUserPassword asks the backend to send the user a password reset
func (s *Service) ResetUserPassword(ctx context.Context, userID int64) error {
	return s.post(ctx, fmt.Sprintf("/admin/users/%d/reset-password", userID), nil)
}

// PendingRiders returns rider documents awaiting review
func (s *Service) PendingRiders(ctx context.Context) ([]RiderDocument, error) {
	return api.Get[[]RiderDocument](ctx, s.client, "/admin/riders/pending")
}

type riderDecision struct {
	DocID int64 `json:"docId" validate:"required"`
}

// ApproveRider approves a rider document
func (s *Service) ApproveRider(ctx context.Context, docID int64) error {
	return s.decideRider(ctx, "approve", docID)
}

// RejectRider rejects a rider document
func (s *Service) RejectRider(ctx context.Context, docID int64) error {
	return s.decideRider(ctx, "reject", docID)
}

func (s *Service) decideRider(ctx context.Context, action string, docID int64) error {
	req := riderDecision{DocID: docID}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/riders/"+action, req)
}

// ListOrders returns all orders
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return api.Get[[]Order](ctx, s.client, "/admin/orders")
}

// ActiveOrders returns orders that are not yet completed or cancelled
func (s *Service) ActiveOrders(ctx context.Context) ([]ActiveOrder, error) {
	return api.Get[[]ActiveOrder](ctx, s.client, "/admin/orders/active")
}

// Overview returns the analytics summary
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	return api.Get[Overview](ctx, s.client, "/admin/analytics/overview")
}

// OrdersByDay returns daily order counts for the last days days
func (s *Service) OrdersByDay(ctx context.Context, days int) ([]DayRow, error) {
	if days <= 0 {
		days = 30
	}
	q := url.Values{}
	q.Set("days", fmt.Sprint(days))
	return api.Get[[]DayRow](ctx, s.client, "/admin/analytics/orders-by-day?"+q.Encode())
}

// ListSettings returns all platform settings
func (s *Service) ListSettings(ctx context.Context) ([]Setting, error) {
	return api.Get[[]Setting](ctx, s.client, "/admin/settings")
}

// SetSetting creates or replaces a setting
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	req := Setting{Key: key, Value: value}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/settings", req)
}

// SupportInbox returns messages sent to support
func (s *Service) SupportInbox(ctx context.Context) ([]SupportMessage, error) {
	return api.Get[[]SupportMessage](ctx, s.client, "/admin/support/messages")
}

// SendCampaign broadcasts a message to an audience
func (s *Service) SendCampaign(ctx context.Context, req CampaignRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/campaigns", req)
}

// DashboardStats is the admin landing summary
type DashboardStats struct {
	TotalUsers                int `json:"totalUsers"`
	TotalOrders               int `json:"totalOrders"`
	PendingRiderVerifications int `json:"pendingRiderVerifications"`
	TodayOrders               int `json:"todayOrders"`
}

// Dashboard loads users, orders and pending riders concurrently and
// summarizes them. The first failure cancels the rest and is returned.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (DashboardStats, error) {
	var (
		users  []User
		orders []Order
		riders []RiderDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		riders, err = s.PendingRiders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	stats := DashboardStats{
		TotalUsers:                len(users),
		TotalOrders:               len(orders),
		PendingRiderVerifications: len(riders),
	}
	for _, o := range orders {
		created, ok := parseTimestamp(o.CreatedAt, now.Location())
		if ok && !created.Before(midnight) {
			stats.TodayOrders++
		}
	}

	return stats, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts RFC 3339 and the SQL datetime format the API uses.
// Zone-less values are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
