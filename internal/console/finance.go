package console

import (
	"context"
	"fmt"

	"github.com/odg-delivery/console/internal/api"
)

// Payout is money owed or paid to a vendor
type Payout struct {
	ID          int64   `json:"id" validate:"required"`
	VendorID    int64   `json:"vendor_id"`
	VendorName  string  `json:"vendor_name"`
	AmountCents int64   `json:"amount_cents"`
	Status      string  `json:"status" validate:"required"`
	Reference   *string `json:"reference"`
	CreatedAt   string  `json:"created_at"`
	PaidAt      *string `json:"paid_at"`
}

// PayoutRequest creates a payout
type PayoutRequest struct {
	VendorID    int64  `json:"vendorId" validate:"required,gt=0"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Reference   string `json:"reference,omitempty"`
}

// Refund is money returned to a student for an order
type Refund struct {
	ID          int64   `json:"id" validate:"required"`
	OrderID     int64   `json:"order_id"`
	UserID      int64   `json:"user_id"`
	UserName    string  `json:"user_name"`
	AmountCents int64   `json:"amount_cents"`
	Reason      *string `json:"reason"`
	Status      string  `json:"status" validate:"required"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at"`
}

// RefundRequest creates a refund
type RefundRequest struct {
	OrderID     int64  `json:"order_id" validate:"required,gt=0"`
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Reason      string `json:"reason,omitempty"`
}

// FeeVersion is one published version of the fee schedule
type FeeVersion struct {
	ID               int64   `json:"id" validate:"required"`
	Version          int64   `json:"version" validate:"required"`
	PlatformFeeBps   int64   `json:"platform_fee_bps"`
	DeliveryFeeCents int64   `json:"delivery_fee_cents"`
	SurgeMultiplier  float64 `json:"surge_multiplier"`
	Notes            *string `json:"notes"`
	CreatedAt        string  `json:"created_at"`
}

// FeeRequest publishes a new fee schedule version
type FeeRequest struct {
	PlatformFeeBps   int64   `json:"platform_fee_bps" validate:"gte=0"`
	DeliveryFeeCents int64   `json:"delivery_fee_cents" validate:"gte=0"`
	SurgeMultiplier  float64 `json:"surge_multiplier" validate:"gt=0"`
	Notes            string  `json:"notes,omitempty"`
}

// ListPayouts returns all vendor payouts
func (s *Service) ListPayouts(ctx context.Context) ([]Payout, error) {
	return api.Get[[]Payout](ctx, s.client, "/admin/payouts")
}

// CreatePayout records a payout to a vendor
func (s *Service) CreatePayout(ctx context.Context, req PayoutRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/payouts", req)
}

// MarkPayoutPaid marks a payout as paid
func (s *Service) MarkPayoutPaid(ctx context.Context, id int64) error {
	return s.post(ctx, fmt.Sprintf("/admin/payouts/%d/mark-paid", id), nil)
}

// ListRefunds returns all refunds
func (s *Service) ListRefunds(ctx context.Context) ([]Refund, error) {
	return api.Get[[]Refund](ctx, s.client, "/admin/refunds")
}

// CreateRefund records a refund for an order
func (s *Service) CreateRefund(ctx context.Context, req RefundRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/refunds", req)
}

// MarkRefundProcessed marks a refund as processed
func (s *Service) MarkRefundProcessed(ctx context.Context, id int64) error {
	return s.post(ctx, fmt.Sprintf("/admin/refunds/%d/mark-processed", id), nil)
}

// ListFees returns the fee schedule history, newest first as the API orders it
func (s *Service) ListFees(ctx context.Context) ([]FeeVersion, error) {
	return api.Get[[]FeeVersion](ctx, s.client, "/admin/fees")
}

// PublishFees publishes a new fee schedule version
func (s *Service) PublishFees(ctx context.Context, req FeeRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/fees", req)
}

type feeRollback struct {
	Version int64 `json:"version" validate:"required,gt=0"`
}

// RollbackFees makes an earlier fee version current again
func (s *Service) RollbackFees(ctx context.Context, version int64) error {
	req := feeRollback{Version: version}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/admin/fees/rollback", req)
}
