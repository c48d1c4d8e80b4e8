package apitest

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odg-delivery/console/internal/auth"
)

// Seeded accounts. Each logs in with its Password.
const (
	AdminEmail   = "admin@odg.test"
	VendorEmail  = "vendor@odg.test"
	StudentEmail = "student@odg.test"
	FreshEmail   = "fresh@odg.test"
	Password     = "correct-horse"

	// VerificationCode is the code every verification and reset email carries
	VerificationCode = "123456"

	// VendorID is the vendor owned by VendorEmail
	VendorID int64 = 7
)

type account struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Role         *string `json:"role"`
	IsVerified   int     `json:"is_verified"`
	Active       bool    `json:"-"`
	PasswordHash []byte  `json:"-"`
}

func (a *account) role() auth.Role {
	if a.Role == nil {
		return ""
	}
	return auth.Role(*a.Role)
}

type vendorRow struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"-"`
}

type orderRow struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	VendorID   int64  `json:"-"`
	RiderID    *int64 `json:"rider_id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
	CreatedAt  string `json:"created_at"`
	Reason     string `json:"-"`
}

type menuRow struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	IsAvailable int     `json:"is_available"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  *int64  `json:"category_id"`
}

type riderDoc struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	DocumentType string `json:"document_type"`
	DocumentURL  string `json:"document_url"`
	Status       string `json:"status"`
	Name         string `json:"name"`
}

type payoutRow struct {
	ID          int64   `json:"id"`
	VendorID    int64   `json:"vendor_id"`
	VendorName  string  `json:"vendor_name"`
	AmountCents int64   `json:"amount_cents"`
	Status      string  `json:"status"`
	Reference   *string `json:"reference"`
	CreatedAt   string  `json:"created_at"`
	PaidAt      *string `json:"paid_at"`
}

type refundRow struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	UserID      int64   `json:"user_id"`
	UserName    string  `json:"user_name"`
	AmountCents int64   `json:"amount_cents"`
	Reason      *string `json:"reason"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at"`
}

type feeRow struct {
	ID               int64   `json:"id"`
	Version          int64   `json:"version"`
	PlatformFeeBps   int64   `json:"platform_fee_bps"`
	DeliveryFeeCents int64   `json:"delivery_fee_cents"`
	SurgeMultiplier  float64 `json:"surge_multiplier"`
	Notes            *string `json:"notes"`
	CreatedAt        string  `json:"created_at"`
}

type placeRow struct {
	ID           int64   `json:"id"`
	UniversityID int64   `json:"university_id,omitempty"`
	CampusID     int64   `json:"campus_id,omitempty"`
	Name         string  `json:"name"`
	BoundaryJSON *string `json:"boundary_json"`
}

type categoryRow struct {
	ID        int64  `json:"id"`
	VendorID  int64  `json:"-"`
	Name      string `json:"name"`
	SortIndex int    `json:"sort_index"`
}

type settingRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ratingRow struct {
	VendorID int64   `json:"-"`
	Rating   int     `json:"rating"`
	Comment  *string `json:"comment"`
	Name     string  `json:"name"`
}

type supportRow struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type profileRow struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsOpen      int     `json:"is_open"`
}

type bankRow struct {
	VendorID      int64  `json:"vendor_id"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

type hoursRow struct {
	DayOfWeek int    `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

type brandingRow struct {
	VendorID  int64   `json:"vendor_id"`
	LogoURL   *string `json:"logo_url"`
	BannerURL *string `json:"banner_url"`
}

type modifierGroupRow struct {
	ID       int64  `json:"id"`
	VendorID int64  `json:"-"`
	Name     string `json:"name"`
}

type modifierOptionRow struct {
	ID         int64  `json:"id"`
	GroupID    int64  `json:"-"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type campaign struct {
	Audience string
	Message  string
}

type dataset struct {
	nextID int64

	accounts     []*account
	vendors      []*vendorRow
	orders       []*orderRow
	menus        map[int64][]*menuRow
	riderDocs    []*riderDoc
	payouts      []*payoutRow
	refunds      []*refundRow
	fees         []*feeRow
	universities []*placeRow
	campuses     []*placeRow
	zones        []*placeRow
	categories   []*categoryRow
	settings     []*settingRow
	ratings      []*ratingRow
	support      []*supportRow
	campaigns    []campaign
	profiles     map[int64]*profileRow
	banks        map[int64]*bankRow
	hours        map[int64][]hoursRow
	branding     map[int64]*brandingRow
	groups       []*modifierGroupRow
	options      []*modifierOptionRow
	itemGroups   map[int64][]int64
	resets       map[string]bool
}

func (d *dataset) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *dataset) accountByLogin(login string) *account {
	for _, a := range d.accounts {
		if strings.EqualFold(a.Email, login) || a.Phone == login {
			return a
		}
	}
	return nil
}

func (d *dataset) accountByID(id int64) *account {
	for _, a := range d.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (d *dataset) groupByID(id int64) *modifierGroupRow {
	for _, g := range d.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (d *dataset) menuItem(vendorID, itemID int64) *menuRow {
	for _, m := range d.menus[vendorID] {
		if m.ID == itemID {
			return m
		}
	}
	return nil
}

func (d *dataset) vendorByID(id int64) *vendorRow {
	for _, v := range d.vendors {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

func hash(password string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}

func ptr[T any](v T) *T {
	return &v
}

func seed() *dataset {
	pw := hash(Password)
	d := &dataset{
		nextID: 100,
		menus:      make(map[int64][]*menuRow),
		resets:     make(map[string]bool),
		profiles:   make(map[int64]*profileRow),
		banks:      make(map[int64]*bankRow),
		hours:      make(map[int64][]hoursRow),
		branding:   make(map[int64]*brandingRow),
		itemGroups: make(map[int64][]int64),
	}

	d.accounts = []*account{
		{ID: 1, Name: "Ada Admin", Email: AdminEmail, Phone: "08000000001", Role: ptr("admin"), IsVerified: 1, Active: true, PasswordHash: pw},
		{ID: 2, Name: "Vic Vendor", Email: VendorEmail, Phone: "08000000002", Role: ptr("vendor"), IsVerified: 1, Active: true, PasswordHash: pw},
		{ID: 3, Name: "Sam Student", Email: StudentEmail, Phone: "08000000003", Role: ptr("student"), IsVerified: 1, Active: true, PasswordHash: pw},
		{ID: 4, Name: "Fay Fresh", Email: FreshEmail, Phone: "08000000004", Role: nil, IsVerified: 1, Active: true, PasswordHash: pw},
		{ID: 5, Name: "Ray Rider", Email: "rider@odg.test", Phone: "08000000005", Role: ptr("rider"), IsVerified: 0, Active: true, PasswordHash: pw},
	}

	d.vendors = []*vendorRow{
		{ID: VendorID, Name: "Campus Grill", OwnerID: 2},
		{ID: 8, Name: "Late Night Noodles", OwnerID: 0},
	}

	today := now()
	d.orders = []*orderRow{
		{ID: 11, UserID: 3, VendorID: VendorID, Status: "pending", TotalCents: 2500, CreatedAt: today},
		{ID: 12, UserID: 3, VendorID: VendorID, Status: "preparing", TotalCents: 1800, CreatedAt: today, RiderID: ptr(int64(5))},
		{ID: 13, UserID: 3, VendorID: 8, Status: "completed", TotalCents: 4200, CreatedAt: "2024-01-02 12:00:00"},
	}

	d.menus[VendorID] = []*menuRow{
		{ID: 21, Name: "Jollof Rice", Description: ptr("Party style"), PriceCents: 1500, IsAvailable: 1, CategoryID: ptr(int64(81))},
		{ID: 22, Name: "Water", PriceCents: 0, IsAvailable: 0},
	}

	d.riderDocs = []*riderDoc{
		{ID: 31, UserID: 5, DocumentType: "id_card", DocumentURL: "/uploads/31.png", Status: "pending", Name: "Ray Rider"},
	}

	d.payouts = []*payoutRow{
		{ID: 41, VendorID: VendorID, VendorName: "Campus Grill", AmountCents: 50000, Status: "pending", CreatedAt: "2024-03-01 09:00:00"},
	}

	d.refunds = []*refundRow{
		{ID: 51, OrderID: 13, UserID: 3, UserName: "Sam Student", AmountCents: 4200, Reason: ptr("cold food"), Status: "pending", CreatedAt: "2024-03-02 09:00:00"},
	}

	d.fees = []*feeRow{
		{ID: 61, Version: 1, PlatformFeeBps: 500, DeliveryFeeCents: 300, SurgeMultiplier: 1, CreatedAt: "2024-01-01 00:00:00"},
	}

	d.universities = []*placeRow{{ID: 71, Name: "University of Lagos"}}
	d.campuses = []*placeRow{{ID: 72, UniversityID: 71, Name: "Akoka"}}
	d.zones = []*placeRow{{ID: 73, CampusID: 72, Name: "Halls"}}

	d.categories = []*categoryRow{{ID: 81, VendorID: VendorID, Name: "Mains", SortIndex: 0}}
	d.settings = []*settingRow{{Key: "support_email", Value: "help@odg.test"}}
	d.ratings = []*ratingRow{{VendorID: VendorID, Rating: 5, Comment: ptr("Great"), Name: "Sam Student"}}
	d.profiles[VendorID] = &profileRow{ID: VendorID, Name: "Campus Grill", Description: ptr("Grills and rice"), IsOpen: 1}
	d.groups = []*modifierGroupRow{{ID: 85, VendorID: VendorID, Name: "Extras"}}
	d.options = []*modifierOptionRow{{ID: 86, GroupID: 85, Name: "Plantain", PriceCents: 300}}
	d.itemGroups[21] = []int64{85}
	d.support = []*supportRow{
		{ID: 91, UserID: 3, Name: "Sam Student", Email: StudentEmail, Phone: "08000000003", Message: "Where is my order?", CreatedAt: today},
		{ID: 92, UserID: 2, Name: "Vic Vendor", Email: VendorEmail, Phone: "08000000002", Message: "Payout is late", CreatedAt: "2024-03-03 10:00:00"},
	}

	return d
}
