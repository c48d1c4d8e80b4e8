package console_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odg-delivery/console/internal/api"
	"github.com/odg-delivery/console/internal/apitest"
	"github.com/odg-delivery/console/internal/console"
	"github.com/odg-delivery/console/internal/storage"
)

type fixedToken string

func (f fixedToken) Token() (string, bool) { return string(f), f != "" }

func newService(t *testing.T, email string) (*console.Service, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	client := api.New(srv.URL)
	client.SetTokenSource(fixedToken(srv.Token(email)))
	return console.NewService(client, zerolog.Nop()), srv
}

func TestAdmin_Users(t *testing.T) {
	svc, srv := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	assert.Equal(t, apitest.AdminEmail, users[0].Email)
	assert.True(t, users[0].Verified())

	require.NoError(t, svc.SetUserActive(ctx, 3, false))
	req, ok := srv.LastRequest(http.MethodPost, "/admin/users/3/deactivate")
	require.True(t, ok)
	assert.JSONEq(t, `{}`, req.Body)

	require.NoError(t, svc.SetUserActive(ctx, 3, true))
	require.NoError(t, svc.ResetUserPassword(ctx, 3))

	err = svc.SetUserActive(ctx, 999, true)
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "User not found", reqErr.Message)
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	svc, _ := newService(t, apitest.VendorEmail)

	_, err := svc.ListUsers(context.Background())
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Equal(t, "Admin access required", reqErr.Message)
}

func TestAdmin_Riders(t *testing.T) {
	svc, srv := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	docs, err := svc.PendingRiders(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, svc.ApproveRider(ctx, docs[0].ID))
	req, _ := srv.LastRequest(http.MethodPost, "/admin/riders/approve")
	assert.JSONEq(t, fmt.Sprintf(`{"docId":%d}`, docs[0].ID), req.Body)

	docs, err = svc.PendingRiders(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.ErrorIs(t, svc.RejectRider(ctx, 0), console.ErrInvalidInput)
}

func TestAdmin_OrdersAndAnalytics(t *testing.T) {
	svc, srv := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	active, err := svc.ActiveOrders(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Campus Grill", active[0].VendorName)
	assert.Nil(t, active[0].RiderID)
	require.NotNil(t, active[1].RiderID)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), overview.Orders)
	assert.Equal(t, 24.5, overview.AvgDeliveryMins)

	days, err := svc.OrdersByDay(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, days)
	_, ok := srv.LastRequest(http.MethodGet, "/admin/analytics/orders-by-day?days=30")
	assert.True(t, ok)
}

func TestAdmin_Dashboard(t *testing.T) {
	svc, _ := newService(t, apitest.AdminEmail)

	stats, err := svc.Dashboard(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingRiderVerifications)
	assert.Equal(t, 2, stats.TodayOrders)
}

func TestAdmin_DashboardFailsAsAWhole(t *testing.T) {
	svc, _ := newService(t, apitest.VendorEmail)

	_, err := svc.Dashboard(context.Background(), time.Now())
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
}

func TestAdmin_SettingsSupportCampaigns(t *testing.T) {
	svc, srv := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	require.NoError(t, svc.SetSetting(ctx, "min_order_cents", "500"))
	settings, err := svc.ListSettings(ctx)
	require.NoError(t, err)
	assert.Contains(t, settings, console.Setting{Key: "min_order_cents", Value: "500"})

	assert.ErrorIs(t, svc.SetSetting(ctx, "", "x"), console.ErrInvalidInput)

	inbox, err := svc.SupportInbox(ctx)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	require.NoError(t, svc.SendCampaign(ctx, console.CampaignRequest{Audience: console.AudienceRiders, Message: "Bonus tonight"}))
	req, _ := srv.LastRequest(http.MethodPost, "/admin/campaigns")
	assert.JSONEq(t, `{"audience":"riders","message":"Bonus tonight"}`, req.Body)

	err = svc.SendCampaign(ctx, console.CampaignRequest{Audience: "everyone", Message: "x"})
	assert.ErrorIs(t, err, console.ErrInvalidInput)
}

func TestFinance_Payouts(t *testing.T) {
	svc, srv := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	cents, err := console.ParseAmount("120.75")
	require.NoError(t, err)
	require.NoError(t, svc.CreatePayout(ctx, console.PayoutRequest{VendorID: apitest.VendorID, AmountCents: cents}))

	req, _ := srv.LastRequest(http.MethodPost, "/admin/payouts")
	assert.JSONEq(t, `{"vendorId":7,"amount_cents":12075}`, req.Body)

	payouts, err := svc.ListPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	created := payouts[1]
	assert.Nil(t, created.Reference)
	assert.Nil(t, created.PaidAt)

	require.NoError(t, svc.MarkPayoutPaid(ctx, created.ID))
	payouts, err = svc.ListPayouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "paid", payouts[1].Status)
	assert.NotNil(t, payouts[1].PaidAt)

	err = svc.CreatePayout(ctx, console.PayoutRequest{VendorID: apitest.VendorID})
	assert.ErrorIs(t, err, console.ErrInvalidInput)
}

func TestFinance_Refunds(t *testing.T) {
	svc, srv := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	require.NoError(t, svc.CreateRefund(ctx, console.RefundRequest{OrderID: 12, UserID: 3, AmountCents: 500, Reason: "late"}))
	req, _ := srv.LastRequest(http.MethodPost, "/admin/refunds")
	assert.JSONEq(t, `{"order_id":12,"user_id":3,"amount_cents":500,"reason":"late"}`, req.Body)

	refunds, err := svc.ListRefunds(ctx)
	require.NoError(t, err)
	require.Len(t, refunds, 2)
	require.NoError(t, svc.MarkRefundProcessed(ctx, refunds[0].ID))

	refunds, err = svc.ListRefunds(ctx)
	require.NoError(t, err)
	assert.Equal(t, "processed", refunds[0].Status)

	assert.ErrorIs(t, svc.CreateRefund(ctx, console.RefundRequest{OrderID: 1, AmountCents: 5}), console.ErrInvalidInput)
}

func TestFinance_Fees(t *testing.T) {
	svc, _ := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	require.NoError(t, svc.PublishFees(ctx, console.FeeRequest{PlatformFeeBps: 700, DeliveryFeeCents: 250, SurgeMultiplier: 1.5, Notes: "exam week"}))
	fees, err := svc.ListFees(ctx)
	require.NoError(t, err)
	require.Len(t, fees, 2)
	assert.Equal(t, int64(2), fees[0].Version)
	require.NotNil(t, fees[0].Notes)
	assert.Equal(t, "exam week", *fees[0].Notes)

	require.NoError(t, svc.RollbackFees(ctx, 1))
	fees, err = svc.ListFees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), fees[0].PlatformFeeBps)

	assert.ErrorIs(t, svc.RollbackFees(ctx, 0), console.ErrInvalidInput)
	assert.ErrorIs(t, svc.PublishFees(ctx, console.FeeRequest{SurgeMultiplier: 0}), console.ErrInvalidInput)
}

func TestZones_Geography(t *testing.T) {
	svc, _ := newService(t, apitest.AdminEmail)
	ctx := context.Background()

	require.NoError(t, svc.CreateUniversity(ctx, "Covenant"))
	geo, err := svc.Geography(ctx)
	require.NoError(t, err)
	require.Len(t, geo.Universities, 2)

	uni := geo.Universities[1]
	require.NoError(t, svc.CreateCampus(ctx, uni.ID, "Main"))
	geo, err = svc.Geography(ctx)
	require.NoError(t, err)
	campuses := geo.CampusesOf(uni.ID)
	require.Len(t, campuses, 1)

	require.NoError(t, svc.CreateZone(ctx, campuses[0].ID, "Library"))
	geo, err = svc.Geography(ctx)
	require.NoError(t, err)
	assert.Len(t, geo.ZonesOf(campuses[0].ID), 1)
	assert.Len(t, geo.ZonesOf(72), 1)

	assert.ErrorIs(t, svc.CreateCampus(ctx, 0, "x"), console.ErrInvalidInput)
	assert.ErrorIs(t, svc.CreateZone(ctx, 72, ""), console.ErrInvalidInput)
}

func TestVendor_ResolveVendorID(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()
	store := storage.NewMemory()

	id, err := svc.ResolveVendorID(ctx, 3, store)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, 0, store.Len())

	id, err = svc.ResolveVendorID(ctx, 0, store)
	require.NoError(t, err)
	assert.Equal(t, apitest.VendorID, id)
	stored, _, _ := store.Get(storage.KeyVendorID)
	assert.Equal(t, "7", stored)

	calls := len(srv.Requests())
	id, err = svc.ResolveVendorID(ctx, 0, store)
	require.NoError(t, err)
	assert.Equal(t, apitest.VendorID, id)
	assert.Len(t, srv.Requests(), calls, "stored id is reused")
}

func TestVendor_ResolveVendorIDWithoutVendors(t *testing.T) {
	svc, _ := newService(t, apitest.StudentEmail)

	_, err := svc.ResolveVendorID(context.Background(), 0, storage.NewMemory())
	assert.ErrorIs(t, err, console.ErrNoVendor)
}

func TestVendor_Orders(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	orders, err := svc.VendorOrders(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Sam Student", orders[0].Customer())

	require.NoError(t, svc.UpdateOrderStatus(ctx, apitest.VendorID, 11, console.StatusReady, "ignored"))
	req, _ := srv.LastRequest(http.MethodPost, "/vendors/7/orders/11/status")
	assert.JSONEq(t, `{"status":"ready"}`, req.Body)

	require.NoError(t, svc.UpdateOrderStatus(ctx, apitest.VendorID, 11, console.StatusCancelled, "out of rice"))
	req, _ = srv.LastRequest(http.MethodPost, "/vendors/7/orders/11/status")
	assert.JSONEq(t, `{"status":"cancelled","reason":"out of rice"}`, req.Body)

	assert.ErrorIs(t, svc.UpdateOrderStatus(ctx, apitest.VendorID, 11, "teleported", ""), console.ErrInvalidInput)

	_, err = svc.VendorOrders(ctx, 8)
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
}

func TestVendor_Menu(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	price, err := console.ParsePrice("2,000")
	require.NoError(t, err)
	require.NoError(t, svc.CreateMenuItem(ctx, apitest.VendorID, console.MenuItemRequest{Name: "Suya", PriceCents: price, IsAvailable: true}))

	req, _ := srv.LastRequest(http.MethodPost, "/vendors/7/menu")
	assert.JSONEq(t, `{"name":"Suya","description":null,"price_cents":200000,"image_url":null,"is_available":true}`, req.Body)

	menu, err := svc.Menu(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, menu, 3)
	item := menu[2]
	assert.True(t, item.Available())
	assert.False(t, menu[1].Available())

	desc := "Spicy"
	require.NoError(t, svc.UpdateMenuItem(ctx, apitest.VendorID, item.ID, console.MenuItemRequest{Name: "Suya", Description: &desc, PriceCents: 0}))
	menu, err = svc.Menu(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), menu[2].PriceCents)
	assert.Equal(t, "Spicy", *menu[2].Description)

	require.NoError(t, svc.DeleteMenuItem(ctx, apitest.VendorID, item.ID))
	menu, err = svc.Menu(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Len(t, menu, 2)

	assert.ErrorIs(t, svc.CreateMenuItem(ctx, apitest.VendorID, console.MenuItemRequest{PriceCents: 100}), console.ErrInvalidInput)
	assert.ErrorIs(t, svc.CreateMenuItem(ctx, apitest.VendorID, console.MenuItemRequest{Name: "x", PriceCents: -1}), console.ErrInvalidInput)
}

func TestVendor_StatsRatingsCategories(t *testing.T) {
	svc, _ := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OrdersCount)
	assert.Equal(t, int64(4300), stats.GrossCents)
	assert.Equal(t, int64(2), stats.TodayOrders)

	ratings, err := svc.Ratings(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Rating)

	require.NoError(t, svc.CreateCategory(ctx, apitest.VendorID, "Drinks"))
	cats, err := svc.Categories(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, 1, cats[1].SortIndex)
}

func TestService_ShapeErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"No id"}]`))
	}))
	defer srv.Close()

	svc := console.NewService(api.New(srv.URL), zerolog.Nop())
	_, err := svc.ListVendors(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnexpectedShape)

	var reqErr *api.RequestError
	assert.False(t, errors.As(err, &reqErr))
}
