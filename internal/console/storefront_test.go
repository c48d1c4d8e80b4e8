package console_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odg-delivery/console/internal/api"
	"github.com/odg-delivery/console/internal/apitest"
	"github.com/odg-delivery/console/internal/console"
)

func TestVendor_Profile(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	profile, err := svc.Profile(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Campus Grill", profile.Name)
	assert.True(t, profile.Open())

	blank := "  "
	require.NoError(t, svc.SaveProfile(ctx, console.ProfileRequest{
		VendorID:    apitest.VendorID,
		Name:        "Campus Grill & Co",
		Description: &blank,
		IsOpen:      0,
	}))
	req, _ := srv.LastRequest(http.MethodPost, "/vendors/profile")
	assert.JSONEq(t, `{"vendorId":7,"name":"Campus Grill & Co","description":null,"image_url":null,"is_open":0}`, req.Body)

	profile, err = svc.Profile(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.False(t, profile.Open())
	assert.Nil(t, profile.Description)

	assert.ErrorIs(t, svc.SaveProfile(ctx, console.ProfileRequest{VendorID: apitest.VendorID}), console.ErrInvalidInput)
	assert.ErrorIs(t, svc.SaveProfile(ctx, console.ProfileRequest{VendorID: apitest.VendorID, Name: "x", IsOpen: 2}), console.ErrInvalidInput)

	err = svc.SaveProfile(ctx, console.ProfileRequest{VendorID: 8, Name: "Not mine"})
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
}

func TestVendor_BankAndBranding(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	bank, err := svc.Bank(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Nil(t, bank)

	require.NoError(t, svc.SaveBank(ctx, apitest.VendorID, "First Bank", "0123456789"))
	bank, err = svc.Bank(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.NotNil(t, bank)
	assert.Equal(t, "0123456789", bank.AccountNumber)

	assert.ErrorIs(t, svc.SaveBank(ctx, apitest.VendorID, "First Bank", "12-34"), console.ErrInvalidInput)

	branding, err := svc.Branding(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Nil(t, branding)

	require.NoError(t, svc.SaveBranding(ctx, apitest.VendorID, "https://cdn.odg.test/logo.png", ""))
	req, _ := srv.LastRequest(http.MethodPost, "/vendors/branding")
	assert.JSONEq(t, `{"vendorId":7,"logo_url":"https://cdn.odg.test/logo.png","banner_url":null}`, req.Body)

	branding, err = svc.Branding(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.NotNil(t, branding)
	assert.Nil(t, branding.BannerURL)

	assert.ErrorIs(t, svc.SaveBranding(ctx, apitest.VendorID, "not a url", ""), console.ErrInvalidInput)
}

func TestVendor_Hours(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	hours := svc.Hours(ctx, apitest.VendorID)
	assert.Equal(t, console.DefaultHours(), hours)

	hours[0].OpenTime = "10:00"
	hours[0].CloseTime = "16:00"
	require.NoError(t, svc.SaveHours(ctx, apitest.VendorID, hours))
	_, sent := srv.LastRequest(http.MethodPost, "/vendors/hours")
	assert.True(t, sent)

	saved := svc.Hours(ctx, apitest.VendorID)
	require.Len(t, saved, 7)
	assert.Equal(t, "Sun", saved[0].Day())
	assert.Equal(t, "10:00", saved[0].OpenTime)

	bad := console.DefaultHours()
	bad[1].CloseTime = "07:00"
	assert.ErrorIs(t, svc.SaveHours(ctx, apitest.VendorID, bad), console.ErrInvalidInput)

	bad = console.DefaultHours()
	bad[2].OpenTime = "8am"
	assert.ErrorIs(t, svc.SaveHours(ctx, apitest.VendorID, bad), console.ErrInvalidInput)

	bad = console.DefaultHours()
	bad[3].DayOfWeek = 0
	assert.ErrorIs(t, svc.SaveHours(ctx, apitest.VendorID, bad), console.ErrInvalidInput)

	assert.ErrorIs(t, svc.SaveHours(ctx, apitest.VendorID, console.DefaultHours()[:6]), console.ErrInvalidInput)
}

func TestVendor_HoursFallBackWhenUnavailable(t *testing.T) {
	svc, _ := newService(t, apitest.VendorEmail)

	hours := svc.Hours(context.Background(), 8)
	assert.Equal(t, console.DefaultHours(), hours)
}

func TestVendor_Modifiers(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	groups, err := svc.ModifierGroups(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Extras", groups[0].Name)

	options, err := svc.ModifierOptions(ctx, groups[0].ID)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, int64(300), options[0].PriceCents)

	groupID, err := svc.CreateModifierGroup(ctx, apitest.VendorID, "Sauces")
	require.NoError(t, err)
	assert.NotZero(t, groupID)

	optionID, err := svc.CreateModifierOption(ctx, groupID, "Pepper", 150)
	require.NoError(t, err)
	assert.NotZero(t, optionID)
	req, _ := srv.LastRequest(http.MethodPost, "/vendors/modifier-options")
	assert.JSONEq(t, `{"groupId":`+strconv.FormatInt(groupID, 10)+`,"name":"Pepper","price_cents":150}`, req.Body)

	_, err = svc.CreateModifierOption(ctx, groupID, "Free", -1)
	assert.ErrorIs(t, err, console.ErrInvalidInput)
	_, err = svc.CreateModifierGroup(ctx, apitest.VendorID, "")
	assert.ErrorIs(t, err, console.ErrInvalidInput)

	require.NoError(t, svc.AssignModifierGroup(ctx, apitest.VendorID, 21, groupID))
	assigned, err := svc.ItemModifierGroups(ctx, apitest.VendorID, 21)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	require.NoError(t, svc.UnassignModifierGroup(ctx, apitest.VendorID, 21, 85))
	assigned, err = svc.ItemModifierGroups(ctx, apitest.VendorID, 21)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Sauces", assigned[0].Name)

	assert.ErrorIs(t, svc.AssignModifierGroup(ctx, apitest.VendorID, 21, 0), console.ErrInvalidInput)
}

func TestVendor_CategoryAssignmentAndOrder(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	require.NoError(t, svc.CreateCategory(ctx, apitest.VendorID, "Drinks"))
	cats, err := svc.Categories(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	mains, drinks := cats[0].ID, cats[1].ID

	require.NoError(t, svc.SetItemCategory(ctx, apitest.VendorID, 22, drinks))
	require.NoError(t, svc.SetItemCategory(ctx, apitest.VendorID, 21, 0))
	req, _ := srv.LastRequest(http.MethodPost, "/vendors/7/menu/21/category")
	assert.JSONEq(t, `{"category_id":null}`, req.Body)

	menu, err := svc.Menu(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Nil(t, menu[0].CategoryID)
	require.NotNil(t, menu[1].CategoryID)
	assert.Equal(t, drinks, *menu[1].CategoryID)

	require.NoError(t, svc.ReorderCategories(ctx, apitest.VendorID, []int64{drinks, mains}))
	req, _ = srv.LastRequest(http.MethodPost, "/vendors/7/categories/reorder")
	assert.JSONEq(t, `{"order":[{"id":`+strconv.FormatInt(drinks, 10)+`,"sort_index":0},{"id":81,"sort_index":1}]}`, req.Body)

	cats, err = svc.Categories(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Equal(t, "Drinks", cats[0].Name)

	assert.ErrorIs(t, svc.ReorderCategories(ctx, apitest.VendorID, []int64{mains, mains}), console.ErrInvalidInput)
	assert.ErrorIs(t, svc.ReorderCategories(ctx, apitest.VendorID, nil), console.ErrInvalidInput)

	require.NoError(t, svc.DeleteCategory(ctx, apitest.VendorID, drinks))
	cats, err = svc.Categories(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	menu, err = svc.Menu(ctx, apitest.VendorID)
	require.NoError(t, err)
	assert.Nil(t, menu[1].CategoryID)
}

func TestVendor_EarningsAndTransactions(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	rows, err := svc.Earnings(ctx, apitest.VendorID, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].OrdersCount)
	assert.Equal(t, int64(4300), rows[0].GrossCents)
	_, sent := srv.LastRequest(http.MethodGet, "/vendors/7/earnings?range=daily")
	assert.True(t, sent)

	rows, err = svc.Earnings(ctx, apitest.VendorID, console.RangeMonthly)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Label, len("2006-01"))

	_, err = svc.Earnings(ctx, apitest.VendorID, "yearly")
	assert.ErrorIs(t, err, console.ErrInvalidInput)

	txs, err := svc.Transactions(ctx, apitest.VendorID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "pending", txs[0].PaymentStatus)

	var buf bytes.Buffer
	require.NoError(t, console.WriteEarningsCSV(&buf, []console.EarningsRow{
		{Label: "2024-03-01", OrdersCount: 3, GrossCents: 4500, CompletedCents: 1250},
		{Label: `week "9"`, OrdersCount: 1, GrossCents: 5},
	}))
	assert.Equal(t, "Period,Orders,Gross,Completed\n2024-03-01,3,45.00,12.50\n\"week \"\"9\"\"\",1,0.05,0.00\n", buf.String())
}

func TestSupport_SendAndHistory(t *testing.T) {
	svc, srv := newService(t, apitest.VendorEmail)
	ctx := context.Background()

	notes, err := svc.SupportHistory(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Payout is late", notes[0].Message)

	require.NoError(t, svc.SendSupport(ctx, "  Need a new tablet  "))
	req, _ := srv.LastRequest(http.MethodPost, "/support")
	assert.JSONEq(t, `{"message":"Need a new tablet"}`, req.Body)

	notes, err = svc.SupportHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	assert.ErrorIs(t, svc.SendSupport(ctx, "   "), console.ErrInvalidInput)
}
