package console

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/odg-delivery/console/internal/api"
)

// Earnings ranges accepted by GET /vendors/{id}/earnings
const (
	RangeDaily   = "daily"
	RangeWeekly  = "weekly"
	RangeMonthly = "monthly"
)

// EarningsRow is one period of a vendor's sales
type EarningsRow struct {
	Label          string `json:"label" validate:"required"`
	OrdersCount    int64  `json:"orders_count"`
	GrossCents     int64  `json:"gross_cents"`
	CompletedCents int64  `json:"completed_cents"`
}

// Transaction is a vendor order seen from the payments side
type Transaction struct {
	ID            int64  `json:"id" validate:"required"`
	Status        string `json:"status"`
	TotalCents    int64  `json:"total_cents"`
	PaymentStatus string `json:"payment_status"`
	CreatedAt     string `json:"created_at"`
}

// Earnings returns sales grouped by day, week or month. An empty period
// means daily.
func (s *Service) Earnings(ctx context.Context, vendorID int64, period string) ([]EarningsRow, error) {
	if period == "" {
		period = RangeDaily
	}
	switch period {
	case RangeDaily, RangeWeekly, RangeMonthly:
	default:
		return nil, fmt.Errorf("%w: range must be one of %s, %s, %s", ErrInvalidInput, RangeDaily, RangeWeekly, RangeMonthly)
	}

	q := url.Values{"range": {period}}
	return api.Get[[]EarningsRow](ctx, s.client, fmt.Sprintf("/vendors/%d/earnings?%s", vendorID, q.Encode()))
}

// Transactions returns the vendor's orders with their payment status
func (s *Service) Transactions(ctx context.Context, vendorID int64) ([]Transaction, error) {
	return api.Get[[]Transaction](ctx, s.client, fmt.Sprintf("/vendors/%d/transactions", vendorID))
}

// WriteEarningsCSV writes rows as Period, Orders, Gross, Completed with
// amounts in major units
func WriteEarningsCSV(w io.Writer, rows []EarningsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Period", "Orders", "Gross", "Completed"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Label,
			strconv.FormatInt(r.OrdersCount, 10),
			FormatCents(r.GrossCents),
			FormatCents(r.CompletedCents),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
