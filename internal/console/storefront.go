package console

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/odg-delivery/console/internal/api"
)

// Weekday names indexed by day_of_week, Sunday first
var Weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// VendorProfile is the storefront a vendor shows to students
type VendorProfile struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsOpen      int     `json:"is_open"`
}

// Open reports the is_open flag, which the API sends as 0 or 1
func (p VendorProfile) Open() bool {
	return p.IsOpen == 1
}

// ProfileRequest replaces the vendor's profile
type ProfileRequest struct {
	VendorID    int64   `json:"vendorId" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsOpen      int     `json:"is_open" validate:"oneof=0 1"`
}

// BankAccount is where the vendor's payouts are sent
type BankAccount struct {
	VendorID      int64  `json:"vendor_id"`
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
}

type bankRequest struct {
	VendorID      int64  `json:"vendorId" validate:"required,gt=0"`
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required,numeric"`
}

// OpeningHours is one day of the vendor's week
type OpeningHours struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	OpenTime  string `json:"open_time" validate:"required"`
	CloseTime string `json:"close_time" validate:"required"`
}

// Day names the weekday
func (h OpeningHours) Day() string {
	if h.DayOfWeek < 0 || h.DayOfWeek > 6 {
		return fmt.Sprintf("day %d", h.DayOfWeek)
	}
	return Weekdays[h.DayOfWeek]
}

type hoursRequest struct {
	VendorID int64          `json:"vendorId" validate:"required,gt=0"`
	Hours    []OpeningHours `json:"hours" validate:"required,len=7,dive"`
}

// Branding holds the vendor's logo and banner images
type Branding struct {
	VendorID  int64   `json:"vendor_id"`
	LogoURL   *string `json:"logo_url"`
	BannerURL *string `json:"banner_url"`
}

type brandingRequest struct {
	VendorID  int64   `json:"vendorId" validate:"required,gt=0"`
	LogoURL   *string `json:"logo_url" validate:"omitempty,url"`
	BannerURL *string `json:"banner_url" validate:"omitempty,url"`
}

// SupportNote is a message the caller sent to the admins
type SupportNote struct {
	ID        int64  `json:"id" validate:"required"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// DefaultHours is the week a vendor starts with: every day 08:00 to 20:00
func DefaultHours() []OpeningHours {
	out := make([]OpeningHours, len(Weekdays))
	for i := range out {
		out[i] = OpeningHours{DayOfWeek: i, OpenTime: "08:00", CloseTime: "20:00"}
	}
	return out
}

// Profile returns the vendor's profile, or nil when none has been saved
func (s *Service) Profile(ctx context.Context, vendorID int64) (*VendorProfile, error) {
	return api.Get[*VendorProfile](ctx, s.client, fmt.Sprintf("/vendors/%d/profile", vendorID))
}

// SaveProfile replaces the vendor's profile. Empty description and image
// are sent as null.
func (s *Service) SaveProfile(ctx context.Context, req ProfileRequest) error {
	req.Description = nilIfEmpty(req.Description)
	req.ImageURL = nilIfEmpty(req.ImageURL)
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/vendors/profile", req)
}

// Bank returns the vendor's payout account, or nil when none is on file
func (s *Service) Bank(ctx context.Context, vendorID int64) (*BankAccount, error) {
	return api.Get[*BankAccount](ctx, s.client, fmt.Sprintf("/vendors/%d/bank", vendorID))
}

// SaveBank sets the vendor's payout account
func (s *Service) SaveBank(ctx context.Context, vendorID int64, bankName, accountNumber string) error {
	req := bankRequest{VendorID: vendorID, BankName: bankName, AccountNumber: accountNumber}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/vendors/bank", req)
}

// Hours returns the vendor's opening hours. A vendor that never saved any,
// or a backend that cannot answer, gets DefaultHours.
func (s *Service) Hours(ctx context.Context, vendorID int64) []OpeningHours {
	hours, err := api.Get[[]OpeningHours](ctx, s.client, fmt.Sprintf("/vendors/%d/hours", vendorID))
	if err != nil {
		s.logger.Debug().Err(err).Int64("vendor_id", vendorID).Msg("Using default opening hours")
		return DefaultHours()
	}
	if len(hours) == 0 {
		return DefaultHours()
	}
	return hours
}

// SaveHours replaces the whole week. Every day must be present once with
// HH:MM times and a close after the open.
func (s *Service) SaveHours(ctx context.Context, vendorID int64, hours []OpeningHours) error {
	req := hoursRequest{VendorID: vendorID, Hours: hours}
	if err := s.check(req); err != nil {
		return err
	}

	seen := make(map[int]bool, len(hours))
	for _, h := range hours {
		if seen[h.DayOfWeek] {
			return fmt.Errorf("%w: %s is listed twice", ErrInvalidInput, h.Day())
		}
		seen[h.DayOfWeek] = true

		if !clockTime.MatchString(h.OpenTime) || !clockTime.MatchString(h.CloseTime) {
			return fmt.Errorf("%w: %s times must be HH:MM", ErrInvalidInput, h.Day())
		}
		open, _ := time.Parse("15:04", h.OpenTime)
		closing, _ := time.Parse("15:04", h.CloseTime)
		if !closing.After(open) {
			return fmt.Errorf("%w: %s closes before it opens", ErrInvalidInput, h.Day())
		}
	}

	return s.post(ctx, "/vendors/hours", req)
}

// Branding returns the vendor's images, or nil when none are set
func (s *Service) Branding(ctx context.Context, vendorID int64) (*Branding, error) {
	return api.Get[*Branding](ctx, s.client, fmt.Sprintf("/vendors/%d/branding", vendorID))
}

// SaveBranding sets the logo and banner. Empty URLs are sent as null.
func (s *Service) SaveBranding(ctx context.Context, vendorID int64, logoURL, bannerURL string) error {
	req := brandingRequest{
		VendorID:  vendorID,
		LogoURL:   nilIfEmpty(&logoURL),
		BannerURL: nilIfEmpty(&bannerURL),
	}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/vendors/branding", req)
}

// SupportHistory returns the messages the caller has sent to support
func (s *Service) SupportHistory(ctx context.Context) ([]SupportNote, error) {
	return api.Get[[]SupportNote](ctx, s.client, "/support/mine")
}

// SendSupport sends a message to the admins
func (s *Service) SendSupport(ctx context.Context, message string) error {
	req := struct {
		Message string `json:"message" validate:"required"`
	}{Message: strings.TrimSpace(message)}
	if err := s.check(req); err != nil {
		return err
	}
	return s.post(ctx, "/support", req)
}

// nilIfEmpty maps a blank optional string to null
func nilIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
