package apitest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.accounts)
}

func (s *Server) userAction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.data.accountByID(id)
	if a == nil {
		respondMessage(c, http.StatusNotFound, "User not found")
		return
	}

	switch c.Param("action") {
	case "activate":
		a.Active = true
	case "deactivate":
		a.Active = false
	case "reset-password":
		s.data.resets[a.Email] = true
	default:
		respondMessage(c, http.StatusNotFound, "Not found")
		return
	}

	respondOK(c)
}

func (s *Server) pendingRiders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*riderDoc{}
	for _, d := range s.data.riderDocs {
		if d.Status == "pending" {
			out = append(out, d)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) riderAction(c *gin.Context) {
	var req struct {
		DocID int64 `json:"docId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DocID == 0 {
		respondErrors(c, "docId required")
		return
	}

	status := map[string]string{"approve": "approved", "reject": "rejected"}[c.Param("action")]
	if status == "" {
		respondMessage(c, http.StatusNotFound, "Not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.data.riderDocs {
		if d.ID == req.DocID {
			d.Status = status
			if status == "approved" {
				if a := s.data.accountByID(d.UserID); a != nil {
					a.IsVerified = 1
				}
			}
			respondOK(c)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Document not found")
}

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.orders)
}

func (s *Server) activeOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []gin.H{}
	for _, o := range s.data.orders {
		if o.Status == "completed" || o.Status == "cancelled" {
			continue
		}
		row := gin.H{
			"id":          o.ID,
			"status":      o.Status,
			"total_cents": o.TotalCents,
			"rider_id":    o.RiderID,
		}
		if v := s.data.vendorByID(o.VendorID); v != nil {
			row["vendor_name"] = v.Name
		}
		if a := s.data.accountByID(o.UserID); a != nil {
			row["user_name"] = a.Name
			row["user_phone"] = a.Phone
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) overview(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	for _, a := range s.data.accounts {
		counts[string(a.role())]++
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":          len(s.data.orders),
		"vendors":         len(s.data.vendors),
		"riders":          counts["rider"],
		"students":        counts["student"],
		"avgDeliveryMins": 24.5,
	})
}

func (s *Server) ordersByDay(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		respondErrors(c, "days must be a positive number")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type day struct {
		orders int
		gross  int64
	}
	byDay := map[string]*day{}
	for _, o := range s.data.orders {
		if len(o.CreatedAt) < 10 {
			continue
		}
		key := o.CreatedAt[:10]
		if byDay[key] == nil {
			byDay[key] = &day{}
		}
		byDay[key].orders++
		byDay[key].gross += o.TotalCents
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > days {
		keys = keys[len(keys)-days:]
	}

	out := make([]gin.H, 0, len(keys))
	for _, k := range keys {
		out = append(out, gin.H{"d": k, "orders": byDay[k].orders, "gross_cents": byDay[k].gross})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listSettings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.settings)
}

func (s *Server) setSetting(c *gin.Context) {
	var req settingRow
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		respondErrors(c, "key required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.data.settings {
		if row.Key == req.Key {
			row.Value = req.Value
			respondOK(c)
			return
		}
	}
	s.data.settings = append(s.data.settings, &req)
	respondOK(c)
}

func (s *Server) supportMessages(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.support)
}

func (s *Server) sendCampaign(c *gin.Context) {
	var req struct {
		Audience string `json:"audience"`
		Message  string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		respondErrors(c, "message required")
		return
	}

	s.mu.Lock()
	s.data.campaigns = append(s.data.campaigns, campaign{Audience: req.Audience, Message: req.Message})
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"queued": true})
}

func (s *Server) listPayouts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.payouts)
}

func (s *Server) createPayout(c *gin.Context) {
	var req struct {
		VendorID    int64   `json:"vendorId"`
		AmountCents int64   `json:"amount_cents"`
		Reference   *string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AmountCents <= 0 {
		respondErrors(c, "amount_cents must be positive")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.data.vendorByID(req.VendorID)
	if v == nil {
		respondMessage(c, http.StatusNotFound, "Vendor not found")
		return
	}

	row := &payoutRow{
		ID:          s.data.id(),
		VendorID:    v.ID,
		VendorName:  v.Name,
		AmountCents: req.AmountCents,
		Status:      "pending",
		Reference:   req.Reference,
		CreatedAt:   now(),
	}
	s.data.payouts = append(s.data.payouts, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func (s *Server) markPayoutPaid(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.payouts {
		if p.ID == id {
			p.Status = "paid"
			p.PaidAt = ptr(now())
			respondOK(c)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Payout not found")
}

func (s *Server) listRefunds(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.refunds)
}

func (s *Server) createRefund(c *gin.Context) {
	var req struct {
		OrderID     int64   `json:"order_id"`
		UserID      int64   `json:"user_id"`
		AmountCents int64   `json:"amount_cents"`
		Reason      *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AmountCents <= 0 {
		respondErrors(c, "amount_cents must be positive")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.data.accountByID(req.UserID)
	if a == nil {
		respondMessage(c, http.StatusNotFound, "User not found")
		return
	}

	row := &refundRow{
		ID:          s.data.id(),
		OrderID:     req.OrderID,
		UserID:      a.ID,
		UserName:    a.Name,
		AmountCents: req.AmountCents,
		Reason:      req.Reason,
		Status:      "pending",
		CreatedAt:   now(),
	}
	s.data.refunds = append(s.data.refunds, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func (s *Server) markRefundProcessed(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.data.refunds {
		if r.ID == id {
			r.Status = "processed"
			r.ProcessedAt = ptr(now())
			respondOK(c)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Refund not found")
}

// listFees returns the newest version first
func (s *Server) listFees(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*feeRow, len(s.data.fees))
	for i, f := range s.data.fees {
		out[len(out)-1-i] = f
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) publishFees(c *gin.Context) {
	var req struct {
		PlatformFeeBps   int64   `json:"platform_fee_bps"`
		DeliveryFeeCents int64   `json:"delivery_fee_cents"`
		SurgeMultiplier  float64 `json:"surge_multiplier"`
		Notes            *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.fees = s.appendFee(req.PlatformFeeBps, req.DeliveryFeeCents, req.SurgeMultiplier, req.Notes)
	c.JSON(http.StatusCreated, gin.H{"version": s.data.fees[len(s.data.fees)-1].Version})
}

// rollbackFees republishes an earlier version as the newest one
func (s *Server) rollbackFees(c *gin.Context) {
	var req struct {
		Version int64 `json:"version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Version <= 0 {
		respondErrors(c, "version required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.data.fees {
		if f.Version == req.Version {
			note := "rollback to v" + strconv.FormatInt(f.Version, 10)
			s.data.fees = s.appendFee(f.PlatformFeeBps, f.DeliveryFeeCents, f.SurgeMultiplier, &note)
			respondOK(c)
			return
		}
	}
	respondMessage(c, http.StatusNotFound, "Fee version not found")
}

// appendFee must be called with mu held
func (s *Server) appendFee(bps, deliveryCents int64, surge float64, notes *string) []*feeRow {
	var version int64 = 1
	if n := len(s.data.fees); n > 0 {
		version = s.data.fees[n-1].Version + 1
	}
	return append(s.data.fees, &feeRow{
		ID:               s.data.id(),
		Version:          version,
		PlatformFeeBps:   bps,
		DeliveryFeeCents: deliveryCents,
		SurgeMultiplier:  surge,
		Notes:            notes,
		CreatedAt:        now(),
	})
}

func (s *Server) listUniversities(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.universities)
}

func (s *Server) listCampuses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.campuses)
}

func (s *Server) listZones(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.data.zones)
}

type placeRequest struct {
	UniversityID int64  `json:"university_id"`
	CampusID     int64  `json:"campus_id"`
	Name         string `json:"name"`
}

func (s *Server) createUniversity(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondErrors(c, "name required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := &placeRow{ID: s.data.id(), Name: req.Name}
	s.data.universities = append(s.data.universities, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func (s *Server) createCampus(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondErrors(c, "name required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasPlace(s.data.universities, req.UniversityID) {
		respondMessage(c, http.StatusNotFound, "University not found")
		return
	}
	row := &placeRow{ID: s.data.id(), UniversityID: req.UniversityID, Name: req.Name}
	s.data.campuses = append(s.data.campuses, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func (s *Server) createZone(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondErrors(c, "name required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasPlace(s.data.campuses, req.CampusID) {
		respondMessage(c, http.StatusNotFound, "Campus not found")
		return
	}
	row := &placeRow{ID: s.data.id(), CampusID: req.CampusID, Name: req.Name}
	s.data.zones = append(s.data.zones, row)
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}

func hasPlace(rows []*placeRow, id int64) bool {
	for _, r := range rows {
		if r.ID == id {
			return true
		}
	}
	return false
}
