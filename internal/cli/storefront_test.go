package cli

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odg-delivery/console/internal/apitest"
)

func TestVendorProfile(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "profile")
	assert.Regexp(t, `Name\s+Campus Grill\n`, out)
	assert.Regexp(t, `Description\s+Grills and rice\n`, out)
	assert.Regexp(t, `Open\s+yes\n`, out)

	out = h.mustRun("vendor", "profile", "set", "--closed")
	assert.Contains(t, out, "✓ Profile saved")
	req, ok := h.srv.LastRequest(http.MethodPost, "/vendors/profile")
	require.True(t, ok)
	assert.JSONEq(t, `{"vendorId":7,"name":"Campus Grill","description":"Grills and rice","image_url":null,"is_open":0}`, req.Body)

	out = h.mustRun("vendor", "profile")
	assert.Regexp(t, `Open\s+no\n`, out)

	_, err := h.run("vendor", "profile", "set", "--name", " ")
	assert.ErrorContains(t, err, "invalid input")
}

func TestVendorBank(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "bank")
	assert.Equal(t, "No bank details found.\n", out)

	out = h.mustRun("vendor", "bank", "set", "--bank", "First Bank", "--account", "0123456789")
	assert.Contains(t, out, "✓ Bank details saved")
	req, _ := h.srv.LastRequest(http.MethodPost, "/vendors/bank")
	assert.JSONEq(t, `{"vendorId":7,"bank_name":"First Bank","account_number":"0123456789"}`, req.Body)

	out = h.mustRun("vendor", "bank")
	assert.Regexp(t, `First Bank\s+0123456789\n`, out)
}

func TestVendorHours(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "hours")
	assert.Regexp(t, `Sun\s+08:00\s+20:00\n`, out)
	assert.Regexp(t, `Sat\s+08:00\s+20:00\n`, out)

	out = h.mustRun("vendor", "hours", "set", "monday", "09:00", "17:00")
	assert.Contains(t, out, "✓ Mon: 09:00-17:00")

	out = h.mustRun("vendor", "hours")
	assert.Regexp(t, `Mon\s+09:00\s+17:00\n`, out)
	assert.Regexp(t, `Tue\s+08:00\s+20:00\n`, out)

	out = h.mustRun("vendor", "hours", "set", "6", "10:00", "14:00")
	assert.Contains(t, out, "✓ Sat: 10:00-14:00")

	_, err := h.run("vendor", "hours", "set", "someday", "09:00", "17:00")
	assert.ErrorContains(t, err, `invalid day "someday"`)

	_, err = h.run("vendor", "hours", "set", "fri", "18:00", "09:00")
	assert.ErrorContains(t, err, "Fri closes before it opens")

	_, err = h.run("vendor", "hours", "set", "fri", "9", "17:00")
	assert.ErrorContains(t, err, "Fri times must be HH:MM")
}

func TestVendorBranding(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "branding")
	assert.Regexp(t, `Logo\s+-\n`, out)

	h.mustRun("vendor", "branding", "set", "--logo", "https://cdn.odg.test/logo.png")
	h.mustRun("vendor", "branding", "set", "--banner", "https://cdn.odg.test/banner.png")

	req, _ := h.srv.LastRequest(http.MethodPost, "/vendors/branding")
	assert.JSONEq(t, `{"vendorId":7,"logo_url":"https://cdn.odg.test/logo.png","banner_url":"https://cdn.odg.test/banner.png"}`, req.Body)

	out = h.mustRun("vendor", "branding")
	assert.Contains(t, out, "https://cdn.odg.test/banner.png")
}

func TestVendorModifiers(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "modifiers")
	assert.Contains(t, out, "Extras (#85)")
	assert.Contains(t, out, "- Plantain +3.00 (#86)")

	out = h.mustRun("vendor", "modifiers", "add-group", "Sauces")
	assert.Contains(t, out, `✓ Group "Sauces" created`)

	out = h.mustRun("vendor", "modifiers", "add-option", "Extra meat", "--group", "85", "--price", "5")
	assert.Contains(t, out, `✓ Option "Extra meat" added at 5.00`)

	out = h.mustRun("vendor", "modifiers")
	assert.Contains(t, out, "Sauces")
	assert.Contains(t, out, "(no options)")
	assert.Contains(t, out, "Extra meat +5.00")
}

func TestVendorMenuAssignments(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "menu", "groups", "21")
	assert.Contains(t, out, "Extras")

	out = h.mustRun("vendor", "menu", "groups", "unassign", "21", "85")
	assert.Contains(t, out, "✓ Unassigned group 85 on menu item 21")
	out = h.mustRun("vendor", "menu", "groups", "21")
	assert.Contains(t, out, "No modifier groups found.")

	h.mustRun("vendor", "menu", "groups", "assign", "22", "85")
	req, _ := h.srv.LastRequest(http.MethodPost, "/vendors/7/menu/22/modifier-groups")
	assert.JSONEq(t, `{"groupId":85}`, req.Body)

	out = h.mustRun("vendor", "menu", "set-category", "22", "81")
	assert.Contains(t, out, "✓ Menu item 22 filed under category 81")
	out = h.mustRun("vendor", "menu", "set-category", "21", "none")
	assert.Contains(t, out, "✓ Menu item 21 has no category")
	req, _ = h.srv.LastRequest(http.MethodPost, "/vendors/7/menu/21/category")
	assert.JSONEq(t, `{"category_id":null}`, req.Body)
}

func TestVendorCategoriesReorderAndRemove(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	h.mustRun("vendor", "categories", "add", "Drinks")
	out := h.mustRun("vendor", "categories")
	assert.Regexp(t, `81\s+Mains\s+0\n101\s+Drinks\s+1\n`, out)

	out = h.mustRun("vendor", "categories", "reorder", "101", "81")
	assert.Contains(t, out, "✓ Reordered 2 categories")
	out = h.mustRun("vendor", "categories")
	assert.Regexp(t, `101\s+Drinks\s+0\n81\s+Mains\s+1\n`, out)

	out = h.mustRun("vendor", "categories", "rm", "101")
	assert.Contains(t, out, "✓ Removed category 101")
	out = h.mustRun("vendor", "categories")
	assert.NotContains(t, out, "Drinks")
}

func TestVendorEarnings(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "earnings")
	assert.Regexp(t, `\d{4}-\d{2}-\d{2}\s+2\s+43\.00\s+0\.00\n`, out)

	out = h.mustRun("vendor", "earnings", "--range", "weekly", "--csv")
	assert.Regexp(t, `^Period,Orders,Gross,Completed\n\d{4}-W\d{2},2,43\.00,0\.00\n$`, out)

	_, err := h.run("vendor", "earnings", "--range", "hourly")
	assert.ErrorContains(t, err, "range must be one of")

	out = h.mustRun("vendor", "transactions")
	assert.Regexp(t, `11\s+pending\s+pending\s+25\.00`, out)
	assert.Regexp(t, `12\s+preparing\s+pending\s+18\.00`, out)
}

func TestVendorSupport(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.VendorEmail)

	out := h.mustRun("vendor", "support")
	assert.Contains(t, out, "Payout is late")

	out = h.mustRun("vendor", "support", "send", "Printer", "is", "jammed")
	assert.Contains(t, out, "✓ Message sent")
	req, _ := h.srv.LastRequest(http.MethodPost, "/support")
	assert.JSONEq(t, `{"message":"Printer is jammed"}`, req.Body)

	out = h.mustRun("vendor", "support")
	assert.Contains(t, out, "Printer is jammed")
}

func TestVendorStorefrontIsGuarded(t *testing.T) {
	h := newHarness(t)
	h.login(apitest.StudentEmail)

	for _, args := range [][]string{
		{"vendor", "profile"},
		{"vendor", "hours"},
		{"vendor", "modifiers"},
		{"vendor", "earnings"},
		{"vendor", "support"},
	} {
		_, err := h.run(args...)
		assert.ErrorContains(t, err, "is not available to this account", args)
	}
}
